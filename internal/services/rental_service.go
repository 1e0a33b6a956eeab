package services

import (
	"context"
	"fmt"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// RentalService validates and books rental agreements.
type RentalService struct {
	RentalRepo  repositories.RentalRepository
	VehicleRepo repositories.VehicleRepository
	RequestID   string
}

func (s RentalService) Get(ctx context.Context, id int64) (models.Rental, error) {
	return s.RentalRepo.GetByID(ctx, id)
}

func (s RentalService) List(ctx context.Context, status string) ([]models.Rental, error) {
	return s.RentalRepo.List(ctx, status)
}

// Create books a rental after checking the window and vehicle availability.
// The window is inclusive on both ends, same-day rentals are allowed.
func (s RentalService) Create(ctx context.Context, rental models.Rental) (models.Rental, error) {
	if rental.VehicleID <= 0 {
		return rental, domain.ValidationError{Field: "vehicle_id", Msg: "invalid vehicle id"}
	}
	if rental.CustomerID <= 0 {
		return rental, domain.ValidationError{Field: "customer_id", Msg: "invalid customer id"}
	}
	if rental.StartDate.IsZero() || rental.EndDate.IsZero() {
		return rental, domain.ValidationError{Field: "start_date", Msg: "start and end dates are required"}
	}
	if rental.EndDate.Before(rental.StartDate) {
		return rental, domain.ValidationError{Field: "end_date", Msg: "end date must not precede start date"}
	}
	if rental.DailyRate < 0 {
		return rental, domain.ValidationError{Field: "daily_rate", Msg: "daily rate must not be negative"}
	}
	if rental.Status == "" {
		rental.Status = models.RentalBooked
	}

	vehicle, err := s.VehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		return rental, err
	}
	if vehicle.Status == models.VehicleRetired {
		return rental, domain.ConflictError{Resource: "vehicle", Msg: "vehicle is retired"}
	}

	overlap, err := s.RentalRepo.HasOverlap(ctx, rental.VehicleID, rental)
	if err != nil {
		return rental, err
	}
	if overlap {
		return rental, domain.ConflictError{Resource: "rental", Msg: "vehicle already rented in that window"}
	}

	id, err := s.RentalRepo.Create(ctx, rental)
	if err != nil {
		return rental, err
	}
	rental.ID = id
	utils.LogEvent(s.RequestID, "rentals", "create",
		fmt.Sprintf("rental_id=%d vehicle_id=%d days=%d", id, rental.VehicleID, rental.Days()))
	return s.RentalRepo.GetByID(ctx, id)
}

func (s RentalService) UpdateStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.RentalBooked, models.RentalActive, models.RentalCompleted, models.RentalCancelled:
	default:
		return domain.ValidationError{Field: "status", Msg: "unknown rental status"}
	}
	if err := s.RentalRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "rentals", "update_status",
		fmt.Sprintf("rental_id=%d status=%s", id, status))
	return nil
}
