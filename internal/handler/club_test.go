// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"
)

func TestJoin_MemberPasscode(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "Ada", "Lovelace", "ada@example.com", "pw")

	resp := app.postForm(t, RouteJoinClub, url.Values{"passcode": {testMemberPasscode}})
	assertRedirect(t, resp, RouteRoot)

	isMember, isAdmin := userFlags(t, app.db, "ada@example.com")
	if !isMember {
		t.Error("is_member = false after member passcode")
	}
	if isAdmin {
		t.Error("is_admin = true, member passcode must not grant admin")
	}
}

func TestJoin_AdminPasscode(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "Ada", "Lovelace", "ada@example.com", "pw")

	resp := app.postForm(t, RouteJoinClub, url.Values{"passcode": {testAdminPasscode}})
	assertRedirect(t, resp, RouteRoot)

	isMember, isAdmin := userFlags(t, app.db, "ada@example.com")
	if !isAdmin {
		t.Error("is_admin = false after admin passcode")
	}
	// Admin does not imply member.
	if isMember {
		t.Error("is_member = true, admin passcode must not grant membership")
	}
}

func TestJoin_InvalidPasscode(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "Ada", "Lovelace", "ada@example.com", "pw")

	resp := app.postForm(t, RouteJoinClub, url.Values{"passcode": {"guess"}})
	assertRedirect(t, resp, RouteJoinClub)

	isMember, isAdmin := userFlags(t, app.db, "ada@example.com")
	if isMember || isAdmin {
		t.Errorf("flags = (%v, %v) after invalid passcode, want (false, false)", isMember, isAdmin)
	}
}

func TestJoin_Idempotent(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "Ada", "Lovelace", "ada@example.com", "pw")

	for range 2 {
		resp := app.postForm(t, RouteJoinClub, url.Values{"passcode": {testMemberPasscode}})
		assertRedirect(t, resp, RouteRoot)
	}

	isMember, _ := userFlags(t, app.db, "ada@example.com")
	if !isMember {
		t.Error("is_member = false after repeated elevation")
	}
}

func TestJoinForm_AnonymousRedirected(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, RouteJoinClub)
	assertRedirect(t, resp, RouteLogin)
}

func TestJoinForm_Authenticated(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "Ada", "Lovelace", "ada@example.com", "pw")

	resp := app.get(t, RouteJoinClub)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !bodyContains(t, resp, "Join the Club") {
		t.Error("join page missing heading")
	}
}
