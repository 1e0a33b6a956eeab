package models

import "time"

// RentalPayment is a payment recorded against a rental.
type RentalPayment struct {
	ID       int64     `json:"id"`
	RentalID int64     `json:"rentalId"`
	Amount   float64   `json:"amount"`
	Method   string    `json:"method,omitempty"`
	Ref      string    `json:"reference,omitempty"`
	PaidAt   time.Time `json:"paidAt"`
	Notes    string    `json:"notes,omitempty"`
}

// RentalStatement reconciles what a rental owes against what was received.
type RentalStatement struct {
	RentalID     int64           `json:"rentalId"`
	RentalFees   float64         `json:"rentalFees"`
	TollCharges  float64         `json:"tollCharges"`
	AdminFees    float64         `json:"adminFees"`
	TotalCharged float64         `json:"totalCharged"`
	TotalPaid    float64         `json:"totalPaid"`
	Balance      float64         `json:"balance"`
	Payments     []RentalPayment `json:"payments"`
}
