package handler

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/olegiv/clubboard/internal/auth"
	"github.com/olegiv/clubboard/internal/middleware"
	"github.com/olegiv/clubboard/internal/render"
	"github.com/olegiv/clubboard/internal/service"
	"github.com/olegiv/clubboard/web"
)

const (
	testMemberPasscode = "open-sesame"
	testAdminPasscode  = "mellon"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_member BOOLEAN NOT NULL DEFAULT 0,
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_users_email ON users(email);

		CREATE TABLE messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
		CREATE INDEX idx_messages_user_id ON messages(user_id);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testApp wires the full handler stack against an in-memory database.
type testApp struct {
	server *httptest.Server
	client *http.Client
	db     *sql.DB
}

// newTestApp builds the application router the same way main does, minus
// the CSRF and security-header layers that do not affect handler logic.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testDB(t)

	memberHash, err := auth.HashPassword(testMemberPasscode)
	if err != nil {
		t.Fatalf("failed to hash member passcode: %v", err)
	}
	adminHash, err := auth.HashPassword(testAdminPasscode)
	if err != nil {
		t.Fatalf("failed to hash admin passcode: %v", err)
	}

	sm := scs.New()
	sm.Lifetime = 24 * time.Hour

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sm,
	})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}

	authService := service.NewAuthService(db, memberHash, adminHash)

	authHandler := NewAuthHandler(db, renderer, sm, authService)
	clubHandler := NewClubHandler(renderer, authService)
	boardHandler := NewBoardHandler(db, renderer)
	healthHandler := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get(RouteRoot, boardHandler.Home)
	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteSignUp, authHandler.SignUpForm)
	r.Post(RouteSignUp, authHandler.SignUp)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated())
		r.Get(RouteJoinClub, clubHandler.JoinForm)
		r.Post(RouteJoinClub, clubHandler.Join)
		r.Get(RouteLogout, authHandler.Logout)
		r.Post(RouteLogout, authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireMember())
		r.Get(RouteNewMessage, boardHandler.NewMessageForm)
		r.Post(RouteNewMessage, boardHandler.CreateMessage)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		// Stop at the first redirect so tests can assert on it.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: server, client: client, db: db}
}

// get performs a GET and returns the response.
func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// postForm performs a form POST and returns the response.
func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// signUp registers a user through the real sign-up route and leaves the
// client logged in as that user.
func (a *testApp) signUp(t *testing.T, firstName, lastName, email, password string) {
	t.Helper()
	resp := a.postForm(t, RouteSignUp, url.Values{
		"first_name":       {firstName},
		"last_name":        {lastName},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("sign-up status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != RouteJoinClub {
		t.Fatalf("sign-up redirected to %q, want %q", loc, RouteJoinClub)
	}
}

// assertRedirect checks a response is a 303 to the given location.
func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != location {
		t.Fatalf("Location = %q, want %q", loc, location)
	}
}

// readBody drains and closes the response body.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// contains is a shorthand for strings.Contains in assertions.
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// bodyContains reads the response body and reports whether it contains
// the given substring.
func bodyContains(t *testing.T, resp *http.Response, substr string) bool {
	t.Helper()
	return contains(readBody(t, resp), substr)
}

// countRows returns the row count of the given table.
func countRows(t *testing.T, db *sql.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// userFlags returns the is_member/is_admin flags for the given email.
func userFlags(t *testing.T, db *sql.DB, email string) (isMember, isAdmin bool) {
	t.Helper()
	err := db.QueryRow(
		"SELECT is_member, is_admin FROM users WHERE email = ?", email,
	).Scan(&isMember, &isAdmin)
	if err != nil {
		t.Fatalf("failed to read user flags: %v", err)
	}
	return isMember, isAdmin
}
