// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/clubboard/internal/auth"
	"github.com/olegiv/clubboard/internal/store"
)

// Passcodes used to derive the configured digests in tests.
const (
	testMemberPasscode = "open-sesame"
	testAdminPasscode  = "mellon"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open test database")

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_member BOOLEAN NOT NULL DEFAULT 0,
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_users_email ON users(email);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err, "failed to create test schema")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testService(t *testing.T, db *sql.DB) *AuthService {
	t.Helper()

	memberHash, err := auth.HashPassword(testMemberPasscode)
	require.NoError(t, err)
	adminHash, err := auth.HashPassword(testAdminPasscode)
	require.NoError(t, err)

	return NewAuthService(db, memberHash, adminHash)
}

func register(t *testing.T, s *AuthService, email, password string) int64 {
	t.Helper()

	user, err := s.Register(context.Background(), RegisterParams{
		FirstName:       "Test",
		LastName:        "User",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err, "Register")
	return user.ID
}

func TestRegisterThenAuthenticate(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	register(t, s, "ada@example.com", "correct horse")

	user, err := s.Authenticate(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsMember)
	assert.False(t, user.IsAdmin)
}

func TestAuthenticate_EmailNormalized(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	register(t, s, "Ada@Example.COM ", "correct horse")

	user, err := s.Authenticate(ctx, "  ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestAuthenticate_FailureIsUniform(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	register(t, s, "ada@example.com", "correct horse")

	// Wrong password for an existing account and any password for a
	// missing account must produce the very same error.
	_, errWrongPassword := s.Authenticate(ctx, "ada@example.com", "battery staple")
	_, errUnknownEmail := s.Authenticate(ctx, "nobody@example.com", "battery staple")

	require.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword, errUnknownEmail)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterParams{
		Email:           "ada@example.com",
		Password:        "a",
		ConfirmPassword: "b",
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	// The mismatch must be rejected before any store work: no row written.
	count, err := store.New(db).CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "no user row should exist after a mismatch")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	register(t, s, "ada@example.com", "correct horse")

	_, err := s.Register(ctx, RegisterParams{
		Email:           "ada@example.com",
		Password:        "other",
		ConfirmPassword: "other",
	})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestElevate_Member(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	id := register(t, s, "ada@example.com", "correct horse")

	tier, err := s.Elevate(ctx, id, testMemberPasscode)
	require.NoError(t, err)
	assert.Equal(t, "member", tier.String())

	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.IsMember)
	assert.False(t, user.IsAdmin)
}

func TestElevate_Admin(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	id := register(t, s, "ada@example.com", "correct horse")

	tier, err := s.Elevate(ctx, id, testAdminPasscode)
	require.NoError(t, err)
	assert.Equal(t, "admin", tier.String())

	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.False(t, user.IsMember, "admin passcode must not grant membership")
}

func TestElevate_MemberPrecedence(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Both digests verify the same passcode: the member check runs
	// first and short-circuits, so admin is never granted.
	memberHash, err := auth.HashPassword("shared")
	require.NoError(t, err)
	adminHash, err := auth.HashPassword("shared")
	require.NoError(t, err)

	s := NewAuthService(db, memberHash, adminHash)
	id := register(t, s, "ada@example.com", "correct horse")

	tier, err := s.Elevate(ctx, id, "shared")
	require.NoError(t, err)
	assert.Equal(t, "member", tier.String())

	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.IsMember)
	assert.False(t, user.IsAdmin, "shared passcode must grant member, never admin")
}

func TestElevate_Idempotent(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	id := register(t, s, "ada@example.com", "correct horse")

	_, err := s.Elevate(ctx, id, testMemberPasscode)
	require.NoError(t, err)

	tier, err := s.Elevate(ctx, id, testMemberPasscode)
	require.NoError(t, err, "repeated elevation must not error")
	assert.Equal(t, "member", tier.String())

	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.IsMember)
}

func TestElevate_InvalidPasscode(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	id := register(t, s, "ada@example.com", "correct horse")

	_, err := s.Elevate(ctx, id, "wrong")
	require.ErrorIs(t, err, ErrInvalidPasscode)

	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, user.IsMember)
	assert.False(t, user.IsAdmin)
}

func TestElevate_UserGone(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)

	_, err := s.Elevate(context.Background(), 999, testMemberPasscode)
	require.Error(t, err, "elevating a missing user must fail")
	require.NotErrorIs(t, err, ErrInvalidPasscode)
}

func TestRehashPasswordIfNeeded(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	id := register(t, s, "ada@example.com", "correct horse")

	// Fresh hash: nothing to do.
	user, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.RehashPasswordIfNeeded(ctx, user, "correct horse"))

	// Swap in a hash with outdated parameters and check it is upgraded.
	oldHash := "$argon2id$v=19$m=65536,t=1,p=4$c29tZXNhbHQ$RdescudvJCsgt3ub+b+dWRWJTmaaJObG"
	_, err = db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", oldHash, id)
	require.NoError(t, err)

	user, err = store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.RehashPasswordIfNeeded(ctx, user, "correct horse"))

	upgraded, err := store.New(db).GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, upgraded.PasswordHash)
	assert.False(t, auth.NeedsRehash(upgraded.PasswordHash))

	// The upgraded hash still verifies the original password.
	user, err = s.Authenticate(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}
