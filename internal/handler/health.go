// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/clubboard/internal/middleware"
	"github.com/olegiv/clubboard/internal/store"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	queries   *store.Queries
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		queries:   store.New(db),
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for admin callers.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Database  string    `json:"database"`
	Users     int64     `json:"users"`
	Messages  int64     `json:"messages"`
}

// Health handles GET /health requests. Anonymous callers get a bare
// status; admins get database and counter details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	healthy := true
	dbStatus := "ok"
	if err := h.db.PingContext(r.Context()); err != nil {
		healthy = false
		dbStatus = err.Error()
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")

	user := middleware.GetUser(r)
	if user == nil || !user.IsAdmin {
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: status})
		return
	}

	users, _ := h.queries.CountUsers(r.Context())
	messages, _ := h.queries.CountMessages(r.Context())

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  dbStatus,
		Users:     users,
		Messages:  messages,
	})
}
