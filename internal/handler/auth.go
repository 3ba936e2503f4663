// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/clubboard/internal/middleware"
	"github.com/olegiv/clubboard/internal/render"
	"github.com/olegiv/clubboard/internal/service"
	"github.com/olegiv/clubboard/internal/store"
)

// AuthHandler handles sign-up, login and logout routes.
type AuthHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	authService    *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		authService:    authService,
	}
}

// signUpFormData carries the re-populated sign-up fields. Passwords are
// never echoed back.
type signUpFormData struct {
	FirstName string
	LastName  string
	Email     string
}

// SignUpForm renders the sign-up page.
func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "sign-up", render.TemplateData{
		Title:       "Sign Up",
		CurrentUser: middleware.GetUser(r),
		Data:        signUpFormData{},
	})
}

// SignUp handles the sign-up form submission. On success the new user is
// logged in immediately and sent to the club elevation page.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignUp) {
		return
	}

	params := service.RegisterParams{
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	if params.FirstName == "" || params.LastName == "" || params.Email == "" || params.Password == "" {
		flashError(w, r, h.renderer, RouteSignUp, "All fields are required")
		return
	}

	user, err := h.authService.Register(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			flashError(w, r, h.renderer, RouteSignUp, "Passwords do not match")
		case errors.Is(err, store.ErrDuplicateEmail):
			flashError(w, r, h.renderer, RouteSignUp, "An account with that email already exists")
		default:
			logAndInternalError(w, "failed to register user", "error", err)
		}
		return
	}

	// Log the fresh account in right away and offer the passcode page.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user registered", "user_id", user.ID)
	flashSuccess(w, r, h.renderer, RouteJoinClub, "Welcome! Enter the passcode to join the club.")
}

// loginFormData carries the re-populated login email.
type loginFormData struct {
	Email string
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "login", render.TemplateData{
		Title:       "Log In",
		CurrentUser: middleware.GetUser(r),
		Data:        loginFormData{},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Email and password are required")
		return
	}

	user, err := h.authService.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
			return
		}
		logAndInternalError(w, "failed to authenticate user", "error", err)
		return
	}

	// Rotate the session ID so a pre-login session cannot be fixed.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.authService.RehashPasswordIfNeeded(r.Context(), user, password); err != nil {
		slog.Warn("failed to rehash password", "user_id", user.ID, "error", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// Logout destroys the session and returns to the board.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}
