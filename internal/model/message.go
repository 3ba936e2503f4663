// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Message is a board post. Messages are created through the member-only
// write path and never mutated or deleted afterwards.
type Message struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageWithAuthor is a message joined with its author's display
// attributes for the board listing.
type MessageWithAuthor struct {
	Message
	AuthorFirstName string `json:"author_first_name"`
	AuthorLastName  string `json:"author_last_name"`
}

// AuthorName returns the author's full name for display.
func (m MessageWithAuthor) AuthorName() string {
	u := User{FirstName: m.AuthorFirstName, LastName: m.AuthorLastName}
	return u.DisplayName()
}
