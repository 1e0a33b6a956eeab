package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const vehicleColumns = `
	id,
	plate_number,
	COALESCE(state, ''),
	COALESCE(make, ''),
	COALESCE(model, ''),
	COALESCE(year, 0),
	COALESCE(color, ''),
	odometer,
	COALESCE(vehicle_type, ''),
	COALESCE(status, 'available'),
	CASE WHEN last_service IS NULL THEN '' ELSE DATE_FORMAT(last_service, '%Y-%m-%d') END`

// List returns vehicles, optionally filtered by a plate/make/model search term.
func (r VehicleRepository) List(ctx context.Context, q string, limit, offset int) ([]models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []any{}

	if q = strings.TrimSpace(q); q != "" {
		query += ` WHERE (plate_number LIKE ? OR make LIKE ? OR model LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r VehicleRepository) GetByID(ctx context.Context, id int64) (models.Vehicle, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? LIMIT 1`, id)

	var v models.Vehicle
	var odo sql.NullInt64
	err := row.Scan(&v.ID, &v.PlateNumber, &v.State, &v.Make, &v.Model, &v.Year,
		&v.Color, &odo, &v.VehicleType, &v.Status, &v.LastService)
	if errors.Is(err, sql.ErrNoRows) {
		return v, domain.NotFoundError{Resource: "vehicle"}
	}
	if err != nil {
		return v, err
	}
	if odo.Valid {
		x := int(odo.Int64)
		v.Odometer = &x
	}
	return v, nil
}

func (r VehicleRepository) Create(ctx context.Context, v models.Vehicle) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO vehicles (plate_number, state, make, model, year, color, odometer, vehicle_type, status, last_service)
		VALUES (?, ?, ?, ?, NULLIF(?,0), ?, ?, ?, ?, NULLIF(?,''))`,
		v.PlateNumber, v.State, v.Make, v.Model, v.Year, v.Color, v.Odometer, v.VehicleType, v.Status, v.LastService)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r VehicleRepository) Update(ctx context.Context, v models.Vehicle) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE vehicles
		SET plate_number = ?, state = ?, make = ?, model = ?, year = NULLIF(?,0),
		    color = ?, odometer = ?, vehicle_type = ?, status = ?, last_service = NULLIF(?,'')
		WHERE id = ?`,
		v.PlateNumber, v.State, v.Make, v.Model, v.Year, v.Color, v.Odometer,
		v.VehicleType, v.Status, v.LastService, v.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered"}
		}
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

func (r VehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

func scanVehicle(rows *sql.Rows) (models.Vehicle, error) {
	var v models.Vehicle
	var odo sql.NullInt64
	err := rows.Scan(&v.ID, &v.PlateNumber, &v.State, &v.Make, &v.Model, &v.Year,
		&v.Color, &odo, &v.VehicleType, &v.Status, &v.LastService)
	if err != nil {
		return v, err
	}
	if odo.Valid {
		x := int(odo.Int64)
		v.Odometer = &x
	}
	return v, nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
