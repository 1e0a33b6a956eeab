package models

import "time"

// TollNotice is the canonical shape of a single toll-road charge issued
// against a licence plate, regardless of whether it came from the persisted
// store or the external search provider.
type TollNotice struct {
	ID               int64     `json:"id"`
	LicencePlate     string    `json:"licencePlate"`
	State            string    `json:"state"`
	TollNoticeNumber string    `json:"tollNoticeNumber,omitempty"`
	Motorway         string    `json:"motorway"`
	IssuedDate       time.Time `json:"issuedDate"`
	TripStatus       string    `json:"tripStatus"`
	AdminFee         float64   `json:"adminFee"`
	TollAmount       float64   `json:"tollAmount"`
	// TotalAmount comes from the provider as its own field. It is NOT
	// recomputed from AdminFee+TollAmount; provider discrepancies are carried
	// through so they stay visible upstream.
	TotalAmount float64   `json:"totalAmount"`
	DueDate     time.Time `json:"dueDate"`
	IsPaid      bool      `json:"isPaid"`
	VehicleType string    `json:"vehicleType,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// RentalTollNotice ties a notice to the rental whose window it fell into.
// (TollNoticeNumber, RentalID) is the dedup/upsert key.
type RentalTollNotice struct {
	TollNotice
	RentalID   int64     `json:"rentalId"`
	UserID     int64     `json:"userId,omitempty"`
	WeekOfYear int       `json:"weekOfYear"`
	Year       int       `json:"year"`
	CreatedAt  time.Time `json:"createdAt"`
	SyncedAt   time.Time `json:"syncedAt"`
}

// WeeklyTollSummary is a derived aggregate over one (year, week) bucket.
// It is recomputed from scratch on every change, never patched.
type WeeklyTollSummary struct {
	WeekOfYear     int                `json:"weekOfYear"`
	Year           int                `json:"year"`
	WeekStart      time.Time          `json:"weekStart"`
	WeekEnd        time.Time          `json:"weekEnd"`
	TotalTolls     int                `json:"totalTolls"`
	TotalAmount    float64            `json:"totalAmount"`
	TotalAdminFees float64            `json:"totalAdminFees"`
	PaidCount      int                `json:"paidCount"`
	UnpaidCount    int                `json:"unpaidCount"`
	Notices        []RentalTollNotice `json:"notices"`
}

// ProviderTollNotice is the raw record shape returned by the external toll
// search. Dates stay as strings until normalization.
type ProviderTollNotice struct {
	NoticeNumber string  `json:"noticeNumber"`
	LicencePlate string  `json:"licencePlate"`
	State        string  `json:"state"`
	Motorway     string  `json:"motorway"`
	IssuedDate   string  `json:"issuedDate"`
	TripStatus   string  `json:"tripStatus"`
	AdminFee     float64 `json:"adminFee"`
	TollAmount   float64 `json:"tollAmount"`
	TotalAmount  float64 `json:"totalAmount"`
	DueDate      string  `json:"dueDate"`
	IsPaid       bool    `json:"isPaid"`
	VehicleType  string  `json:"vehicleType"`
}
