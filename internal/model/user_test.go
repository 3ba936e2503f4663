// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"full name", "Ada", "Lovelace", "Ada Lovelace"},
		{"first only", "Ada", "", "Ada"},
		{"last only", "", "Lovelace", "Lovelace"},
		{"empty", "", "", "Guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{FirstName: tt.first, LastName: tt.last}
			if got := u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_CanPost(t *testing.T) {
	member := User{IsMember: true}
	if !member.CanPost() {
		t.Error("member should be able to post")
	}

	// Admin alone is not a member and cannot post.
	admin := User{IsAdmin: true}
	if admin.CanPost() {
		t.Error("admin without membership should not be able to post")
	}
}

func TestTier_Satisfies(t *testing.T) {
	member := &User{IsMember: true}
	admin := &User{IsAdmin: true}
	plain := &User{}

	tests := []struct {
		name string
		tier Tier
		user *User
		want bool
	}{
		{"any/anonymous", TierAny, nil, true},
		{"any/user", TierAny, plain, true},
		{"authenticated/anonymous", TierAuthenticated, nil, false},
		{"authenticated/user", TierAuthenticated, plain, true},
		{"member/anonymous", TierMember, nil, false},
		{"member/plain user", TierMember, plain, false},
		{"member/member", TierMember, member, true},
		{"member/admin only", TierMember, admin, false},
		{"admin/member only", TierAdmin, member, false},
		{"admin/admin", TierAdmin, admin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Satisfies(tt.user); got != tt.want {
				t.Errorf("%v.Satisfies(%+v) = %v, want %v", tt.tier, tt.user, got, tt.want)
			}
		})
	}
}

func TestTier_String(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierAny, "any"},
		{TierAuthenticated, "authenticated"},
		{TierMember, "member"},
		{TierAdmin, "admin"},
		{Tier(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
