package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

// TollNoticeRepository persists rental toll notices. Upserts key on
// (toll_notice_number, rental_id), which is a UNIQUE constraint on the table.
type TollNoticeRepository struct {
	DB *sql.DB
}

func (r TollNoticeRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const tollNoticeColumns = `
	id,
	rental_id,
	COALESCE(user_id, 0),
	COALESCE(licence_plate, ''),
	COALESCE(state, ''),
	COALESCE(toll_notice_number, ''),
	COALESCE(motorway, ''),
	issued_date,
	COALESCE(trip_status, ''),
	COALESCE(admin_fee, 0),
	COALESCE(toll_amount, 0),
	COALESCE(total_amount, 0),
	due_date,
	COALESCE(is_paid, 0),
	COALESCE(vehicle_type, ''),
	COALESCE(source, ''),
	COALESCE(week_of_year, 0),
	COALESCE(year, 0),
	created_at,
	synced_at`

// ListByRental returns the rental's notices newest-issued-first. No rows is
// an empty slice, not an error.
func (r TollNoticeRepository) ListByRental(ctx context.Context, rentalID int64) ([]models.RentalTollNotice, error) {
	if rentalID <= 0 {
		return nil, domain.ValidationError{Field: "rental_id", Msg: "invalid rental id"}
	}

	rows, err := r.db().QueryContext(ctx, `
		SELECT `+tollNoticeColumns+`
		FROM rental_toll_notices
		WHERE rental_id = ?
		ORDER BY issued_date DESC`, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.RentalTollNotice{}
	for rows.Next() {
		n, err := scanTollNotice(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanTollNotice(rows *sql.Rows) (models.RentalTollNotice, error) {
	var n models.RentalTollNotice
	var isPaid int
	var dueDate, createdAt, syncedAt sql.NullTime

	err := rows.Scan(
		&n.ID,
		&n.RentalID,
		&n.UserID,
		&n.LicencePlate,
		&n.State,
		&n.TollNoticeNumber,
		&n.Motorway,
		&n.IssuedDate,
		&n.TripStatus,
		&n.AdminFee,
		&n.TollAmount,
		&n.TotalAmount,
		&dueDate,
		&isPaid,
		&n.VehicleType,
		&n.Source,
		&n.WeekOfYear,
		&n.Year,
		&createdAt,
		&syncedAt,
	)
	if err != nil {
		return n, err
	}

	n.IsPaid = isPaid != 0
	if dueDate.Valid {
		n.DueDate = dueDate.Time
	}
	if createdAt.Valid {
		n.CreatedAt = createdAt.Time
	}
	if syncedAt.Valid {
		n.SyncedAt = syncedAt.Time
	}
	return n, nil
}

// Upsert inserts or overwrites the row for (toll_notice_number, rental_id).
// Last write wins for every payload field; created_at keeps its first value.
func (r TollNoticeRepository) Upsert(ctx context.Context, n models.RentalTollNotice) error {
	if n.RentalID <= 0 {
		return domain.ValidationError{Field: "rental_id", Msg: "invalid rental id"}
	}
	if n.TollNoticeNumber == "" {
		return domain.ValidationError{Field: "toll_notice_number", Msg: "missing toll notice number"}
	}

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO rental_toll_notices
			(rental_id, user_id, licence_plate, state, toll_notice_number, motorway,
			 issued_date, trip_status, admin_fee, toll_amount, total_amount, due_date,
			 is_paid, vehicle_type, source, week_of_year, year, created_at, synced_at)
		VALUES (?, NULLIF(?,0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), ?)
		ON DUPLICATE KEY UPDATE
			licence_plate = VALUES(licence_plate),
			state = VALUES(state),
			motorway = VALUES(motorway),
			issued_date = VALUES(issued_date),
			trip_status = VALUES(trip_status),
			admin_fee = VALUES(admin_fee),
			toll_amount = VALUES(toll_amount),
			total_amount = VALUES(total_amount),
			due_date = VALUES(due_date),
			is_paid = VALUES(is_paid),
			vehicle_type = VALUES(vehicle_type),
			source = VALUES(source),
			week_of_year = VALUES(week_of_year),
			year = VALUES(year),
			synced_at = VALUES(synced_at)`,
		n.RentalID,
		n.UserID,
		n.LicencePlate,
		n.State,
		n.TollNoticeNumber,
		n.Motorway,
		n.IssuedDate,
		n.TripStatus,
		n.AdminFee,
		n.TollAmount,
		n.TotalAmount,
		nullableTime(n.DueDate),
		boolToInt(n.IsPaid),
		n.VehicleType,
		n.Source,
		n.WeekOfYear,
		n.Year,
		n.SyncedAt,
	)
	return err
}

// MarkPaid flips is_paid and stamps the fixed "Paid" status marker.
func (r TollNoticeRepository) MarkPaid(ctx context.Context, noticeID int64, syncedAt time.Time) error {
	if noticeID <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid notice id"}
	}

	res, err := r.db().ExecContext(ctx, `
		UPDATE rental_toll_notices
		SET is_paid = 1, trip_status = 'Paid', synced_at = ?
		WHERE id = ?`, syncedAt, noticeID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "toll notice"}
	}
	return nil
}

// UnpaidTotals sums outstanding toll and admin amounts for a rental, used by
// the payment statement.
func (r TollNoticeRepository) UnpaidTotals(ctx context.Context, rentalID int64) (tolls, adminFees float64, err error) {
	err = r.db().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(admin_fee), 0)
		FROM rental_toll_notices
		WHERE rental_id = ? AND is_paid = 0`, rentalID).Scan(&tolls, &adminFees)
	return tolls, adminFees, err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
