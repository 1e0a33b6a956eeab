package models

// Customer is a rental customer record.
type Customer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	LicenceNumber string `json:"licenceNumber,omitempty"`
	Address       string `json:"address,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}
