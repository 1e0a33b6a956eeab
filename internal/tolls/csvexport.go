package tolls

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

var csvHeader = []string{
	"Rental ID",
	"Vehicle Registration",
	"Licence Plate",
	"Notice Number",
	"Motorway",
	"Issued Date",
	"Due Date",
	"Admin Fee",
	"Toll Amount",
	"Total Amount",
	"Status",
	"Week of Year",
	"Year",
}

// WriteCSV streams one row per notice. rego is the fleet registration code of
// the vehicle on the rental (distinct from the plate the provider matched).
func WriteCSV(w io.Writer, rego string, notices []models.RentalTollNotice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, n := range notices {
		status := "Unpaid"
		if n.IsPaid {
			status = "Paid"
		}
		due := ""
		if !n.DueDate.IsZero() {
			due = utils.FormatDate(n.DueDate)
		}
		row := []string{
			strconv.FormatInt(n.RentalID, 10),
			rego,
			n.LicencePlate,
			n.TollNoticeNumber,
			n.Motorway,
			utils.FormatDate(n.IssuedDate),
			due,
			utils.FormatDollars(n.AdminFee),
			utils.FormatDollars(n.TollAmount),
			utils.FormatDollars(n.TotalAmount),
			status,
			strconv.Itoa(n.WeekOfYear),
			strconv.Itoa(n.Year),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
