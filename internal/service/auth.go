// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the authentication, registration and tier
// elevation flows on top of the store layer.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/clubboard/internal/auth"
	"github.com/olegiv/clubboard/internal/model"
	"github.com/olegiv/clubboard/internal/store"
)

// Sentinel errors surfaced to handlers. Each maps to a user-visible
// flash message; anything else is treated as an infrastructure fault.
var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password. The two cases are deliberately indistinguishable to
	// prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordMismatch is returned when the sign-up confirmation
	// does not match the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidPasscode is returned when a passcode matches neither
	// configured digest.
	ErrInvalidPasscode = errors.New("incorrect passcode")
)

// dummyHash is a well-formed argon2id digest matching no secret. It is
// verified against when the email lookup misses so that a failed login
// costs the same whether or not the account exists.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$MDEyMzQ1Njc4OWFiY2RlZg$MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY"

// AuthService verifies credentials, registers accounts and elevates
// privilege tiers. All state lives in the store; the service itself is
// stateless and safe for concurrent use.
type AuthService struct {
	queries            *store.Queries
	memberPasscodeHash string
	adminPasscodeHash  string
}

// NewAuthService creates an AuthService. The two passcode digests come
// from process configuration and are validated at startup.
func NewAuthService(db *sql.DB, memberPasscodeHash, adminPasscodeHash string) *AuthService {
	return &AuthService{
		queries:            store.New(db),
		memberPasscodeHash: memberPasscodeHash,
		adminPasscodeHash:  adminPasscodeHash,
	}
}

// Authenticate verifies an email/password pair and returns the matching
// user. Read-only: safe to call repeatedly. Returns
// ErrInvalidCredentials for unknown email and wrong password alike.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn the same hashing cost as a real comparison.
			auth.CheckPassword(password, dummyHash)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return model.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// RehashPasswordIfNeeded re-creates the stored digest with current
// argon2 parameters after a successful login. Failures are returned for
// logging but must not block the login.
func (s *AuthService) RehashPasswordIfNeeded(ctx context.Context, user model.User, password string) error {
	if !auth.NeedsRehash(user.PasswordHash) {
		return nil
	}

	newHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: newHash,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	}); err != nil {
		return fmt.Errorf("storing rehashed password: %w", err)
	}
	return nil
}

// RegisterParams holds the sign-up form fields.
type RegisterParams struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates a new account with both privilege flags off. The
// confirmation check runs before any hashing or store work, so a
// mismatch costs nothing. Returns store.ErrDuplicateEmail when the
// email is taken.
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (model.User, error) {
	if arg.Password != arg.ConfirmPassword {
		return model.User{}, ErrPasswordMismatch
	}

	passwordHash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        normalizeEmail(arg.Email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(arg.FirstName),
		LastName:     strings.TrimSpace(arg.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Elevate verifies a passcode and raises the user's tier. The member
// digest is checked first and short-circuits: a passcode that happens
// to match both digests only ever grants membership, never admin.
// Re-submitting a correct passcode at the same tier is a harmless
// no-op. Returns ErrInvalidPasscode when neither digest matches.
func (s *AuthService) Elevate(ctx context.Context, userID int64, passcode string) (model.Tier, error) {
	if auth.CheckPassword(passcode, s.memberPasscodeHash) {
		if err := s.queries.SetUserMember(ctx, userID); err != nil {
			return model.TierAny, fmt.Errorf("granting membership: %w", err)
		}
		return model.TierMember, nil
	}

	if auth.CheckPassword(passcode, s.adminPasscodeHash) {
		if err := s.queries.SetUserAdmin(ctx, userID); err != nil {
			return model.TierAny, fmt.Errorf("granting admin: %w", err)
		}
		return model.TierAdmin, nil
	}

	return model.TierAny, ErrInvalidPasscode
}

// normalizeEmail lowercases and trims an email used as a login key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
