package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/clubboard/internal/auth"
)

// Demo account credentials, created only when seeding is enabled.
const (
	DemoMemberEmail    = "member@example.com"
	DemoMemberPassword = "changeme"
)

// Seed creates demo data in the database when enabled. It is safe to
// call on every start: an existing demo account short-circuits.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DemoMemberEmail)
	if err == nil {
		slog.Info("demo account already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for demo account: %w", err)
	}

	passwordHash, err := auth.HashPassword(DemoMemberPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DemoMemberEmail,
		PasswordHash: passwordHash,
		FirstName:    "Demo",
		LastName:     "Member",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating demo account: %w", err)
	}

	if err := queries.SetUserMember(ctx, user.ID); err != nil {
		return fmt.Errorf("granting demo membership: %w", err)
	}

	slog.Info("created demo member account",
		"id", user.ID,
		"email", user.Email,
		"password", DemoMemberPassword,
	)

	return nil
}
