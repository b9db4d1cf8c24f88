package model

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("already exists")

// User data model. The password never leaves the database as anything but
// a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsDriver     bool      `json:"is_driver"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func CreateUser(ctx context.Context, db *sql.DB, u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, is_driver, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsDriver, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}

		return errors.Wrap(err, "insert user")
	}

	u.ID, err = res.LastInsertId()

	return errors.Wrap(err, "user id")
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, is_driver, is_admin, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, is_driver, is_admin, created_at, updated_at
		 FROM users WHERE username = ?`, username))
}

func ListUsers(ctx context.Context, db *sql.DB) ([]*User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, is_driver, is_admin, created_at, updated_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := []*User{}

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	return users, errors.Wrap(rows.Err(), "list users")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*User, error) {
	u := &User{}

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.IsDriver, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}

	return u, nil
}
