package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type RentalRepository struct {
	DB *sql.DB
}

func (r RentalRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// rentalSelect joins vehicles and customers so callers get the plate and
// state needed for toll searches without a second round trip.
const rentalSelect = `
	SELECT r.id,
	       r.vehicle_id,
	       r.customer_id,
	       r.start_date,
	       r.end_date,
	       COALESCE(r.daily_rate, 0),
	       COALESCE(r.status, 'booked'),
	       COALESCE(r.notes, ''),
	       r.created_at,
	       COALESCE(v.plate_number, ''),
	       COALESCE(v.state, ''),
	       COALESCE(v.vehicle_type, ''),
	       COALESCE(c.name, '')
	FROM rentals r
	LEFT JOIN vehicles v ON v.id = r.vehicle_id
	LEFT JOIN customers c ON c.id = r.customer_id`

func (r RentalRepository) GetByID(ctx context.Context, id int64) (models.Rental, error) {
	row := r.db().QueryRowContext(ctx, rentalSelect+` WHERE r.id = ? LIMIT 1`, id)
	rental, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rental, domain.NotFoundError{Resource: "rental"}
	}
	return rental, err
}

func (r RentalRepository) List(ctx context.Context, status string) ([]models.Rental, error) {
	query := rentalSelect
	args := []any{}
	if status != "" {
		query += ` WHERE r.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY r.start_date DESC, r.id DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rental)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (models.Rental, error) {
	var rental models.Rental
	var createdAt sql.NullTime
	err := row.Scan(
		&rental.ID,
		&rental.VehicleID,
		&rental.CustomerID,
		&rental.StartDate,
		&rental.EndDate,
		&rental.DailyRate,
		&rental.Status,
		&rental.Notes,
		&createdAt,
		&rental.PlateNumber,
		&rental.State,
		&rental.VehicleType,
		&rental.CustomerName,
	)
	if err != nil {
		return rental, err
	}
	if createdAt.Valid {
		rental.CreatedAt = createdAt.Time
	}
	return rental, nil
}

func (r RentalRepository) Create(ctx context.Context, rental models.Rental) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO rentals (vehicle_id, customer_id, start_date, end_date, daily_rate, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?,''), NOW())`,
		rental.VehicleID, rental.CustomerID, rental.StartDate, rental.EndDate,
		rental.DailyRate, rental.Status, rental.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RentalRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db().ExecContext(ctx, `UPDATE rentals SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "rental"}
	}
	return nil
}

// HasOverlap reports whether the vehicle already has a non-cancelled rental
// intersecting [start, end].
func (r RentalRepository) HasOverlap(ctx context.Context, vehicleID int64, rental models.Rental) (bool, error) {
	var count int
	err := r.db().QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM rentals
		WHERE vehicle_id = ?
		  AND status <> 'cancelled'
		  AND id <> ?
		  AND start_date <= ?
		  AND end_date >= ?`,
		vehicleID, rental.ID, rental.EndDate, rental.StartDate).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
