package tolls

import (
	"testing"
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

func sampleRaw() models.ProviderTollNotice {
	return models.ProviderTollNotice{
		NoticeNumber: "TN-1001",
		LicencePlate: "abc 123",
		State:        "nsw",
		Motorway:     "M5 East",
		IssuedDate:   "2024-06-05",
		TripStatus:   "Trip completed",
		AdminFee:     1.10,
		TollAmount:   7.43,
		TotalAmount:  8.53,
		DueDate:      "2024-06-26",
		VehicleType:  "car",
	}
}

func TestNormalizeHappyPath(t *testing.T) {
	now := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

	n, err := Normalize(sampleRaw(), 42, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.RentalID != 42 {
		t.Fatalf("rental id not set: %d", n.RentalID)
	}
	if n.LicencePlate != "ABC123" {
		t.Fatalf("plate not normalized: %q", n.LicencePlate)
	}
	if n.State != "NSW" {
		t.Fatalf("state not normalized: %q", n.State)
	}
	if n.WeekOfYear != 23 || n.Year != 2024 {
		t.Fatalf("week derivation wrong: (%d,%d)", n.WeekOfYear, n.Year)
	}
	if !n.SyncedAt.Equal(now) {
		t.Fatalf("synced_at not stamped")
	}
	if n.Source != SourceSearch {
		t.Fatalf("source tag missing: %q", n.Source)
	}
}

func TestNormalizeCarriesInconsistentTotalThrough(t *testing.T) {
	raw := sampleRaw()
	raw.AdminFee = 1.10
	raw.TollAmount = 7.43
	raw.TotalAmount = 99.99 // provider disagrees with its own arithmetic

	n, err := Normalize(raw, 1, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.TotalAmount != 99.99 {
		t.Fatalf("total must be passed through unchanged, got %v", n.TotalAmount)
	}
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	cases := map[string]func(*models.ProviderTollNotice){
		"notice number": func(r *models.ProviderTollNotice) { r.NoticeNumber = " " },
		"licence plate": func(r *models.ProviderTollNotice) { r.LicencePlate = "" },
		"issued date":   func(r *models.ProviderTollNotice) { r.IssuedDate = "not-a-date" },
	}

	for name, mutate := range cases {
		raw := sampleRaw()
		mutate(&raw)
		if _, err := Normalize(raw, 1, time.Now()); !domain.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestNormalizeToleratesMissingOptionalFields(t *testing.T) {
	raw := sampleRaw()
	raw.Motorway = ""
	raw.TripStatus = ""
	raw.DueDate = ""
	raw.VehicleType = ""

	n, err := Normalize(raw, 1, time.Now())
	if err != nil {
		t.Fatalf("optional fields must never hard-fail: %v", err)
	}
	if !n.DueDate.IsZero() {
		t.Fatalf("empty due date should stay zero")
	}
}

func TestNormalizeBadDueDateIsNotFatal(t *testing.T) {
	raw := sampleRaw()
	raw.DueDate = "tomorrow-ish"

	n, err := Normalize(raw, 1, time.Now())
	if err != nil {
		t.Fatalf("unreadable due date should not reject the notice: %v", err)
	}
	if !n.DueDate.IsZero() {
		t.Fatalf("unreadable due date should stay zero")
	}
}
