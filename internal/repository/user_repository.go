package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// User mirrors the 'users' table. ID is the external identity string the
// OAuth frontend hands us at login (a Google account ID); it is the partition
// key for everything the user owns.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Exists reports whether a user row is present.
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE google_id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateIfAbsent inserts a user row unless one already exists. An existing
// row is left untouched: the stored name is not refreshed on later logins.
func (r *UserRepo) CreateIfAbsent(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO users (google_id, name) VALUES (?,?)", id, name)
	return err
}

// GetByID fetches a user by id. Absence surfaces as sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT google_id, name, created_at FROM users WHERE google_id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.CreatedAt)
	return u, err
}
