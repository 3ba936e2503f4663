// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for principal resolution
// and tier-based authorization.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/clubboard/internal/model"
	"github.com/olegiv/clubboard/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the resolved user for the current request.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key for the authenticated user id.
// It is the only thing a session stores about its user.
const SessionKeyUserID = "user_id"

// RouteLogin is where denied requests are sent. Denials carry no
// explanation; the redirect is the whole answer.
const RouteLogin = "/login"

// LoadUser resolves the request's principal. When the session carries a
// user id, the user row is re-read from the database so that privilege
// changes are visible on the very next request. A session whose user no
// longer exists is destroyed and the request continues anonymously.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// Stale session: degrade to anonymous.
					slog.Info("session user no longer exists, logging out", "user_id", userID)
					_ = sm.Destroy(r.Context())
					next.ServeHTTP(w, r)
					return
				}
				slog.Error("failed to load session user", "error", err, "user_id", userID)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireTier creates middleware that denies requests whose principal
// does not satisfy the required tier. Denial is a redirect to the login
// page; the client is never told why. Member and Admin are independent
// predicates, so an admin who never joined fails a member check.
func RequireTier(tier model.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if !tier.Satisfies(user) {
				slog.Debug("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", GetUserID(r),
					"required_tier", tier.String(),
				)
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated requires any logged-in user.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return RequireTier(model.TierAuthenticated)
}

// RequireMember requires the member flag.
func RequireMember() func(http.Handler) http.Handler {
	return RequireTier(model.TierMember)
}

// RequireAdmin requires the admin flag.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireTier(model.TierAdmin)
}
