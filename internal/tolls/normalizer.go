package tolls

import (
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// SourceSearch tags notices that came from the external provider search.
const SourceSearch = "search"

// Normalize converts a raw provider record into the canonical rental-scoped
// notice. Missing identifying fields (notice number, plate, issued date) are
// hard validation failures; every other field is optional and carried as-is.
// TotalAmount in particular is NOT recomputed from AdminFee+TollAmount.
func Normalize(raw models.ProviderTollNotice, rentalID int64, now time.Time) (models.RentalTollNotice, error) {
	var out models.RentalTollNotice

	noticeNumber := utils.TrimOrEmpty(raw.NoticeNumber)
	if noticeNumber == "" {
		return out, domain.ValidationError{Field: "noticeNumber", Msg: "missing toll notice number"}
	}
	plate := utils.NormalizePlate(raw.LicencePlate)
	if plate == "" {
		return out, domain.ValidationError{Field: "licencePlate", Msg: "missing licence plate"}
	}
	issued, err := utils.ParseDateFlexible(raw.IssuedDate)
	if err != nil {
		return out, domain.ValidationError{Field: "issuedDate", Msg: "unparseable issued date", Err: err}
	}

	week, year := WeekOfYear(issued)

	out = models.RentalTollNotice{
		TollNotice: models.TollNotice{
			LicencePlate:     plate,
			State:            utils.NormalizeState(raw.State),
			TollNoticeNumber: noticeNumber,
			Motorway:         utils.TrimOrEmpty(raw.Motorway),
			IssuedDate:       issued,
			TripStatus:       utils.TrimOrEmpty(raw.TripStatus),
			AdminFee:         raw.AdminFee,
			TollAmount:       raw.TollAmount,
			TotalAmount:      raw.TotalAmount,
			IsPaid:           raw.IsPaid,
			VehicleType:      utils.TrimOrEmpty(raw.VehicleType),
			Source:           SourceSearch,
		},
		RentalID:   rentalID,
		WeekOfYear: week,
		Year:       year,
		SyncedAt:   now,
	}

	if due := utils.TrimOrEmpty(raw.DueDate); due != "" {
		if d, err := utils.ParseDateFlexible(due); err == nil {
			out.DueDate = d
		}
		// an unreadable due date is not worth rejecting the notice over
	}

	return out, nil
}
