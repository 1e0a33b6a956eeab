package models

import "time"

// Rental is a single rental agreement. StartDate..EndDate is the inclusive
// window that scopes which toll notices belong to this rental.
type Rental struct {
	ID         int64     `json:"id"`
	VehicleID  int64     `json:"vehicleId"`
	CustomerID int64     `json:"customerId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	DailyRate  float64   `json:"dailyRate"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`

	// Denormalized for toll search and display; populated by joins.
	PlateNumber  string `json:"plateNumber,omitempty"`
	State        string `json:"state,omitempty"`
	VehicleType  string `json:"vehicleType,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// Rental statuses.
const (
	RentalBooked    = "booked"
	RentalActive    = "active"
	RentalCompleted = "completed"
	RentalCancelled = "cancelled"
)

// Days returns the billable day count of the rental window (inclusive).
func (r Rental) Days() int {
	if r.EndDate.Before(r.StartDate) {
		return 0
	}
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
