// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/clubboard/internal/middleware"
	"github.com/olegiv/clubboard/internal/model"
	"github.com/olegiv/clubboard/internal/render"
	"github.com/olegiv/clubboard/internal/service"
)

// ClubHandler handles the passcode elevation routes.
type ClubHandler struct {
	renderer    *render.Renderer
	authService *service.AuthService
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(renderer *render.Renderer, authService *service.AuthService) *ClubHandler {
	return &ClubHandler{
		renderer:    renderer,
		authService: authService,
	}
}

// JoinForm renders the passcode page.
func (h *ClubHandler) JoinForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "join-club", render.TemplateData{
		Title:       "Join the Club",
		CurrentUser: middleware.GetUser(r),
		Data:        struct{}{},
	})
}

// Join verifies the submitted passcode and elevates the current user.
func (h *ClubHandler) Join(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteJoinClub) {
		return
	}

	passcode := r.FormValue("passcode")
	if passcode == "" {
		flashError(w, r, h.renderer, RouteJoinClub, "Passcode is required")
		return
	}

	userID := middleware.GetUserID(r)
	tier, err := h.authService.Elevate(r.Context(), userID, passcode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPasscode) {
			flashError(w, r, h.renderer, RouteJoinClub, "Incorrect passcode")
			return
		}
		logAndInternalError(w, "failed to elevate user", "error", err, "user_id", userID)
		return
	}

	slog.Info("user elevated", "user_id", userID, "tier", tier.String())

	switch tier {
	case model.TierAdmin:
		flashSuccess(w, r, h.renderer, RouteRoot, "You are now an admin.")
	default:
		flashSuccess(w, r, h.renderer, RouteRoot, "Welcome to the club!")
	}
}
