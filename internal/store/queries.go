// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/clubboard/internal/model"
)

// ErrDuplicateEmail is returned by CreateUser when the email is already
// registered. The users.email UNIQUE constraint is the source of truth.
var ErrDuplicateEmail = errors.New("email already registered")

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance for the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const userColumns = "id, email, password_hash, first_name, last_name, is_member, is_admin, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsMember, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams holds the fields for creating a new user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user with both privilege flags off and
// returns the stored record. Returns ErrDuplicateEmail if the email is
// already taken.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.FirstName, arg.LastName, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("reading inserted user id: %w", err)
	}

	return q.GetUserByID(ctx, id)
}

// GetUserByEmail returns the user with the given email.
// Returns sql.ErrNoRows if no such user exists.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID returns the user with the given id.
// Returns sql.ErrNoRows if no such user exists.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// SetUserMember flips the member flag on. Idempotent: granting
// membership to an existing member is a no-op. Returns sql.ErrNoRows if
// the id does not resolve to a user.
func (q *Queries) SetUserMember(ctx context.Context, id int64) error {
	return q.setFlag(ctx, "is_member", id)
}

// SetUserAdmin flips the admin flag on. Idempotent, like SetUserMember.
// Admin is independent of membership and does not imply it.
func (q *Queries) SetUserAdmin(ctx context.Context, id int64) error {
	return q.setFlag(ctx, "is_admin", id)
}

func (q *Queries) setFlag(ctx context.Context, column string, id int64) error {
	// column is one of two compile-time constants, never user input.
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET "+column+" = 1, updated_at = ? WHERE id = ?",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating %s: %w", column, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateUserPasswordParams holds the fields for replacing a password hash.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces the stored password hash. Used for
// transparent rehashes when argon2 parameters change.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		arg.PasswordHash, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateMessageParams holds the fields for creating a new message.
type CreateMessageParams struct {
	Title     string
	Text      string
	UserID    int64
	CreatedAt time.Time
}

// CreateMessage inserts a board message and returns the stored record.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (model.Message, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO messages (title, text, user_id, created_at) VALUES (?, ?, ?, ?)",
		arg.Title, arg.Text, arg.UserID, arg.CreatedAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("inserting message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, fmt.Errorf("reading inserted message id: %w", err)
	}

	var m model.Message
	row := q.db.QueryRowContext(ctx,
		"SELECT id, title, text, user_id, created_at FROM messages WHERE id = ?", id)
	if err := row.Scan(&m.ID, &m.Title, &m.Text, &m.UserID, &m.CreatedAt); err != nil {
		return model.Message{}, fmt.Errorf("reading inserted message: %w", err)
	}
	return m, nil
}

// ListMessagesWithAuthors returns all messages joined with their
// authors' names, newest first.
func (q *Queries) ListMessagesWithAuthors(ctx context.Context) ([]model.MessageWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT m.id, m.title, m.text, m.user_id, m.created_at, u.first_name, u.last_name
		 FROM messages m
		 JOIN users u ON m.user_id = u.id
		 ORDER BY m.created_at DESC, m.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []model.MessageWithAuthor
	for rows.Next() {
		var m model.MessageWithAuthor
		if err := rows.Scan(&m.ID, &m.Title, &m.Text, &m.UserID, &m.CreatedAt,
			&m.AuthorFirstName, &m.AuthorLastName); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return out, nil
}

// CountMessages returns the total number of messages.
func (q *Queries) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// on the given column. Works for both the modernc and mattn drivers,
// whose errors carry the same "UNIQUE constraint failed: <col>" text.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
