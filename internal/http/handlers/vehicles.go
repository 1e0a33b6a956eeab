package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/services"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

func vehicleService() services.VehicleService {
	return services.VehicleService{
		Repo:  repositories.VehicleRepository{},
		Cache: sharedCache(),
	}
}

// GET /api/vehicles
func GetVehicles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, err := vehicleService().List(c.Request.Context(), utils.TrimOrEmpty(c.Query("q")), limit, offset)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": list})
}

// GET /api/vehicles/:id
func GetVehicleByID(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	v, err := vehicleService().Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// POST /api/vehicles
func CreateVehicle(c *gin.Context) {
	var v models.Vehicle
	if !BindJSONOrError(c, &v) {
		return
	}
	v.PlateNumber = utils.NormalizePlate(v.PlateNumber)
	v.State = utils.NormalizeState(v.State)
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}

	created, err := vehicleService().Create(c.Request.Context(), v)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/vehicles/:id
func UpdateVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var v models.Vehicle
	if !BindJSONOrError(c, &v) {
		return
	}
	v.ID = id
	v.PlateNumber = utils.NormalizePlate(v.PlateNumber)
	v.State = utils.NormalizeState(v.State)

	if err := vehicleService().Update(c.Request.Context(), v); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle updated", "id": id})
}

// DELETE /api/vehicles/:id
func DeleteVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	if err := vehicleService().Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted", "id": id})
}
