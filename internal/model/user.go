// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Message, and the access tiers.
package model

import (
	"time"
)

// User represents a registered board user.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsMember     bool      `json:"is_member"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the user's full name, or "Guest" when both name
// parts are empty.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return "Guest"
	}
}

// CanPost returns true if the user may create messages. Posting is a
// member privilege: an admin who never joined as a member cannot post.
func (u *User) CanPost() bool {
	return u.IsMember
}

// Tier is an access level checked by the authorization middleware.
type Tier int

// Access tiers, lowest to most specific. Member and Admin are
// independent predicates on the user record, not a hierarchy.
const (
	TierAny Tier = iota
	TierAuthenticated
	TierMember
	TierAdmin
)

// String returns the tier name for logging.
func (t Tier) String() string {
	switch t {
	case TierAny:
		return "any"
	case TierAuthenticated:
		return "authenticated"
	case TierMember:
		return "member"
	case TierAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Satisfies reports whether a user at this record's privilege level
// passes a check for the required tier. A nil user is anonymous.
func (t Tier) Satisfies(u *User) bool {
	switch t {
	case TierAny:
		return true
	case TierAuthenticated:
		return u != nil
	case TierMember:
		return u != nil && u.IsMember
	case TierAdmin:
		return u != nil && u.IsAdmin
	default:
		return false
	}
}
