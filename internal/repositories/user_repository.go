package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// GetForLogin matches by email or username and returns the stored hash.
func (r UserRepository) GetForLogin(ctx context.Context, login string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, username, email, COALESCE(phone,''), password_hash, role, status
		FROM users
		WHERE email = ? OR username = ?
		LIMIT 1`, login, login).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &hash, &u.Role, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return u, "", domain.NotFoundError{Resource: "user"}
	}
	return u, hash, err
}

func (r UserRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	var count int
	err := r.db().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`, email, username).Scan(&count)
	return count > 0, err
}

func (r UserRepository) Create(ctx context.Context, u models.User, passwordHash string) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, username, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?,''), ?, 'staff', 'active', NOW(), NOW())`,
		u.Name, u.Username, u.Email, u.Phone, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "email or username already registered"}
		}
		return 0, err
	}
	return res.LastInsertId()
}
