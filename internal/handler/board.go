// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/clubboard/internal/middleware"
	"github.com/olegiv/clubboard/internal/model"
	"github.com/olegiv/clubboard/internal/render"
	"github.com/olegiv/clubboard/internal/store"
)

// BoardHandler handles the public message board and message creation.
type BoardHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(db *sql.DB, renderer *render.Renderer) *BoardHandler {
	return &BoardHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// homeData is the index page payload. Author names are loaded for every
// message but only shown to members.
type homeData struct {
	Messages    []model.MessageWithAuthor
	ShowAuthors bool
}

// Home renders the message board. Visible to everyone, including
// anonymous visitors.
func (h *BoardHandler) Home(w http.ResponseWriter, r *http.Request) {
	messages, err := h.queries.ListMessagesWithAuthors(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list messages", "error", err)
		return
	}

	user := middleware.GetUser(r)
	h.renderer.Render(w, r, "index", render.TemplateData{
		Title:       "Message Board",
		CurrentUser: user,
		Data: homeData{
			Messages:    messages,
			ShowAuthors: user != nil && user.IsMember,
		},
	})
}

// messageFormData carries the re-populated new-message fields.
type messageFormData struct {
	Title string
	Text  string
}

// NewMessageForm renders the message composition page. Member-only,
// enforced by the route group.
func (h *BoardHandler) NewMessageForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "new-message", render.TemplateData{
		Title:       "New Message",
		CurrentUser: middleware.GetUser(r),
		Data:        messageFormData{},
	})
}

// CreateMessage handles the new-message form submission.
func (h *BoardHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteNewMessage) {
		return
	}

	title := r.FormValue("title")
	text := r.FormValue("text")

	if title == "" || text == "" {
		flashError(w, r, h.renderer, RouteNewMessage, "Title and message are required")
		return
	}

	userID := middleware.GetUserID(r)
	msg, err := h.queries.CreateMessage(r.Context(), store.CreateMessageParams{
		Title:     title,
		Text:      text,
		UserID:    userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logAndInternalError(w, "failed to create message", "error", err, "user_id", userID)
		return
	}

	slog.Info("message posted", "message_id", msg.ID, "user_id", userID)
	flashSuccess(w, r, h.renderer, RouteRoot, "Message posted.")
}
