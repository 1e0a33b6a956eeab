package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// PaymentService records payments and reconciles a rental's balance.
type PaymentService struct {
	RentalRepo  repositories.RentalRepository
	PaymentRepo repositories.PaymentRepository
	NoticeRepo  repositories.TollNoticeRepository
	RequestID   string
}

func (s PaymentService) Record(ctx context.Context, p models.RentalPayment) (models.RentalPayment, error) {
	if _, err := s.RentalRepo.GetByID(ctx, p.RentalID); err != nil {
		return p, err
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	id, err := s.PaymentRepo.Create(ctx, p)
	if err != nil {
		return p, err
	}
	p.ID = id
	utils.LogEvent(s.RequestID, "payments", "record",
		fmt.Sprintf("rental_id=%d payment_id=%d amount=%s", p.RentalID, id, utils.FormatDollars(p.Amount)))
	return p, nil
}

// Statement charges rental fees for the inclusive day count plus the
// rental's unpaid tolls and admin fees, and nets recorded payments.
func (s PaymentService) Statement(ctx context.Context, rentalID int64) (models.RentalStatement, error) {
	var st models.RentalStatement

	rental, err := s.RentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return st, err
	}

	tollTotal, adminFees, err := s.NoticeRepo.UnpaidTotals(ctx, rentalID)
	if err != nil {
		return st, err
	}

	payments, err := s.PaymentRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return st, err
	}
	paid, err := s.PaymentRepo.SumByRental(ctx, rentalID)
	if err != nil {
		return st, err
	}

	st.RentalID = rentalID
	st.RentalFees = rental.DailyRate * float64(rental.Days())
	// total_amount on a notice already includes its admin fee; AdminFees is
	// reported separately for display only.
	st.TollCharges = tollTotal
	st.AdminFees = adminFees
	st.TotalCharged = st.RentalFees + st.TollCharges
	st.TotalPaid = paid
	st.Balance = st.TotalCharged - st.TotalPaid
	st.Payments = payments
	return st, nil
}
