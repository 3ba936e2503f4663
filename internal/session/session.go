// Package session configures the SQLite-backed session manager. A
// session stores only the authenticated user's id; the full user record
// is re-read from the database on every request.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// New creates a new session manager backed by the sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode

	if !isDev {
		// __Host- prefix binds the cookie to this host over HTTPS only.
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
		sm.Cookie.Secure = true
	}

	return sm
}
