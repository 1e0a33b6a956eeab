package models

// Vehicle is a fleet vehicle available for rental.
type Vehicle struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plateNumber"`
	State       string `json:"state"`
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	Year        int    `json:"year,omitempty"`
	Color       string `json:"color,omitempty"`
	Odometer    *int   `json:"odometer,omitempty"`
	VehicleType string `json:"vehicleType,omitempty"`
	Status      string `json:"status"`
	LastService string `json:"lastService,omitempty"`
}

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)
