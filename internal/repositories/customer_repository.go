package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type CustomerRepository struct {
	DB *sql.DB
}

func (r CustomerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const customerColumns = `
	id,
	name,
	COALESCE(email, ''),
	COALESCE(phone, ''),
	COALESCE(licence_number, ''),
	COALESCE(address, ''),
	COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'), '')`

func (r CustomerRepository) List(ctx context.Context, q string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if q = strings.TrimSpace(q); q != "" {
		query += ` WHERE (name LIKE ? OR email LIKE ? OR phone LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LicenceNumber, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r CustomerRepository) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	var c models.Customer
	err := r.db().QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ? LIMIT 1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LicenceNumber, &c.Address, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.NotFoundError{Resource: "customer"}
	}
	return c, err
}

func (r CustomerRepository) Create(ctx context.Context, c models.Customer) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO customers (name, email, phone, licence_number, address, created_at)
		VALUES (?, NULLIF(?,''), NULLIF(?,''), NULLIF(?,''), NULLIF(?,''), NOW())`,
		c.Name, c.Email, c.Phone, c.LicenceNumber, c.Address)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "customer", Msg: "email already registered"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r CustomerRepository) Update(ctx context.Context, c models.Customer) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE customers
		SET name = ?, email = NULLIF(?,''), phone = NULLIF(?,''),
		    licence_number = NULLIF(?,''), address = NULLIF(?,'')
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.LicenceNumber, c.Address, c.ID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "customer"}
	}
	return nil
}

func (r CustomerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "customer"}
	}
	return nil
}
