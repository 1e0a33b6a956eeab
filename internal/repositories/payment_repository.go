package repositories

import (
	"context"
	"database/sql"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

func (r PaymentRepository) ListByRental(ctx context.Context, rentalID int64) ([]models.RentalPayment, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, rental_id, COALESCE(amount,0), COALESCE(method,''),
		       COALESCE(reference,''), paid_at, COALESCE(notes,'')
		FROM rental_payments
		WHERE rental_id = ?
		ORDER BY paid_at DESC, id DESC`, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.RentalPayment{}
	for rows.Next() {
		var p models.RentalPayment
		var paidAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.RentalID, &p.Amount, &p.Method, &p.Ref, &paidAt, &p.Notes); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			p.PaidAt = paidAt.Time
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r PaymentRepository) Create(ctx context.Context, p models.RentalPayment) (int64, error) {
	if p.RentalID <= 0 {
		return 0, domain.ValidationError{Field: "rental_id", Msg: "invalid rental id"}
	}
	if p.Amount <= 0 {
		return 0, domain.ValidationError{Field: "amount", Msg: "amount must be positive"}
	}

	res, err := r.db().ExecContext(ctx, `
		INSERT INTO rental_payments (rental_id, amount, method, reference, paid_at, notes)
		VALUES (?, ?, NULLIF(?,''), NULLIF(?,''), ?, NULLIF(?,''))`,
		p.RentalID, p.Amount, p.Method, p.Ref, p.PaidAt, p.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r PaymentRepository) SumByRental(ctx context.Context, rentalID int64) (float64, error) {
	var total float64
	err := r.db().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM rental_payments WHERE rental_id = ?`, rentalID).Scan(&total)
	return total, err
}
