package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http/middleware"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/services"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

func rentalService(c *gin.Context) services.RentalService {
	return services.RentalService{
		RentalRepo:  repositories.RentalRepository{},
		VehicleRepo: repositories.VehicleRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
}

type createRentalRequest struct {
	VehicleID  int64   `json:"vehicleId"`
	CustomerID int64   `json:"customerId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	DailyRate  float64 `json:"dailyRate"`
	Notes      string  `json:"notes"`
}

// POST /api/rentals
func CreateRental(c *gin.Context) {
	var req createRentalRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid startDate, want YYYY-MM-DD", err)
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid endDate, want YYYY-MM-DD", err)
		return
	}

	rental, err := rentalService(c).Create(c.Request.Context(), models.Rental{
		VehicleID:  req.VehicleID,
		CustomerID: req.CustomerID,
		StartDate:  start,
		EndDate:    end,
		DailyRate:  req.DailyRate,
		Notes:      req.Notes,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rental)
}

// GET /api/rentals
func GetRentals(c *gin.Context) {
	list, err := rentalService(c).List(c.Request.Context(), utils.TrimOrEmpty(c.Query("status")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": list})
}

// GET /api/rentals/:id
func GetRentalByID(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	rental, err := rentalService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

type rentalStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/rentals/:id/status
func UpdateRentalStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req rentalStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := rentalService(c).UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rental status updated", "id": id, "status": req.Status})
}
