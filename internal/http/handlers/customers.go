package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// GET /api/customers
func GetCustomers(c *gin.Context) {
	repo := repositories.CustomerRepository{}
	list, err := repo.List(c.Request.Context(), utils.TrimOrEmpty(c.Query("q")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": list})
}

// GET /api/customers/:id
func GetCustomerByID(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	repo := repositories.CustomerRepository{}
	cust, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// POST /api/customers
func CreateCustomer(c *gin.Context) {
	var cust models.Customer
	if !BindJSONOrError(c, &cust) {
		return
	}
	repo := repositories.CustomerRepository{}
	id, err := repo.Create(c.Request.Context(), cust)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	cust.ID = id
	c.JSON(http.StatusCreated, cust)
}

// PUT /api/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var cust models.Customer
	if !BindJSONOrError(c, &cust) {
		return
	}
	cust.ID = id
	repo := repositories.CustomerRepository{}
	if err := repo.Update(c.Request.Context(), cust); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer updated", "id": id})
}

// DELETE /api/customers/:id
func DeleteCustomer(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	repo := repositories.CustomerRepository{}
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted", "id": id})
}
