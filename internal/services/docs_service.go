package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// DocsService renders the rental invoice PDF.
type DocsService struct {
	RentalRepo  repositories.RentalRepository
	PaymentRepo repositories.PaymentRepository
	NoticeRepo  repositories.TollNoticeRepository
	RequestID   string
	Loader      func(context.Context, int64) (rentalDocData, error)
}

type rentalDocData struct {
	RentalID     int64
	CustomerName string
	PlateNumber  string
	State        string
	VehicleType  string
	StartDate    string
	EndDate      string
	Days         int
	DailyRate    float64
	RentalFees   float64
	TollCharges  float64
	AdminFees    float64
	TotalPaid    float64
}

func (s DocsService) GenerateInvoice(ctx context.Context, rentalID int64) ([]byte, string, error) {
	data, err := s.loadRentalDocData(ctx, rentalID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("rental_id=%d", rentalID))
	return buildInvoicePDF(data)
}

func (s DocsService) loadRentalDocData(ctx context.Context, rentalID int64) (rentalDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, rentalID)
	}
	var out rentalDocData

	rental, err := s.RentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return out, err
	}
	tollTotal, adminFees, err := s.NoticeRepo.UnpaidTotals(ctx, rentalID)
	if err != nil {
		return out, err
	}
	paid, err := s.PaymentRepo.SumByRental(ctx, rentalID)
	if err != nil {
		return out, err
	}

	out.RentalID = rental.ID
	out.CustomerName = rental.CustomerName
	out.PlateNumber = rental.PlateNumber
	out.State = rental.State
	out.VehicleType = rental.VehicleType
	out.StartDate = utils.FormatDate(rental.StartDate)
	out.EndDate = utils.FormatDate(rental.EndDate)
	out.Days = rental.Days()
	out.DailyRate = rental.DailyRate
	out.RentalFees = rental.DailyRate * float64(rental.Days())
	out.TollCharges = tollTotal
	out.AdminFees = adminFees
	out.TotalPaid = paid
	return out, nil
}

func buildInvoicePDF(d rentalDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Rental Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RENTAL INVOICE")
	pdf.Ln(12)

	invNo := fmt.Sprintf("INV-%d-%s", d.RentalID, safeFilenamePart(d.PlateNumber))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Customer : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Vehicle  : %s (%s) %s", safe(d.PlateNumber, "-"), safe(d.State, "-"), safe(d.VehicleType, "")),
		fmt.Sprintf("Period   : %s to %s (%d days)", safe(d.StartDate, "-"), safe(d.EndDate, "-"), d.Days),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Charges:")
	pdf.Ln(8)

	total := d.RentalFees + d.TollCharges
	pdf.SetFont("Helvetica", "", 11)
	rows := []string{
		fmt.Sprintf("Rental fees (%d x %s): %s", d.Days, utils.FormatDollars(d.DailyRate), utils.FormatDollars(d.RentalFees)),
		fmt.Sprintf("Unpaid tolls (incl. %s admin fees): %s", utils.FormatDollars(d.AdminFees), utils.FormatDollars(d.TollCharges)),
		fmt.Sprintf("Payments received: %s", utils.FormatDollars(d.TotalPaid)),
	}
	for _, row := range rows {
		pdf.Cell(0, 6, row)
		pdf.Ln(7)
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total charged: "+utils.FormatDollars(total))
	pdf.Ln(8)
	pdf.Cell(0, 8, "Balance due: "+utils.FormatDollars(total-d.TotalPaid))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Toll charges reflect notices synced at generation time. Later notices appear on the next invoice.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%d_%s.pdf", d.RentalID, safeFilenamePart(d.PlateNumber))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
