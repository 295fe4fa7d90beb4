// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/views"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret-0123456789"

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.CreateSchema(d); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return d
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   "sqlite",
		DatabaseURL:    "test.db",
		SessionSecret:  TestSessionSecret,
		SessionTTL:     time.Hour,
		PhotoDir:       "photos",
		MaxUploadBytes: 16 << 20,
		SeedAdmin:      true,
		AdminUsername:  "admin",
		AdminPassword:  cliparse.DefaultAdminPassword,
		LogLevel:       "info",
	}
}

// NewTestGate builds an auth gate over d using the test secret
func NewTestGate(d *db.DB) *auth.Gate {
	return auth.NewGate(db.NewUserStore(d), db.NewSessionStore(d), TestSessionSecret, time.Hour)
}

// CreateTestUser inserts a voter account and returns it
func CreateTestUser(t *testing.T, d *db.DB, username, password string) *models.User {
	t.Helper()
	return createUser(t, d, username, password, models.RoleVoter)
}

// CreateTestAdmin inserts an admin account and returns it
func CreateTestAdmin(t *testing.T, d *db.DB, username, password string) *models.User {
	t.Helper()
	return createUser(t, d, username, password, models.RoleAdmin)
}

func createUser(t *testing.T, d *db.DB, username, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user, err := db.NewUserStore(d).Create(context.Background(), username, hash, role)
	if err != nil {
		t.Fatalf("Failed to create test user %q: %v", username, err)
	}
	return user
}

// CreateTestCandidate inserts a candidate and returns it
func CreateTestCandidate(t *testing.T, d *db.DB, name string) *models.Candidate {
	t.Helper()

	c, err := db.NewCandidateStore(d).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("Failed to create test candidate %q: %v", name, err)
	}
	return c
}

// LoginCookie authenticates through gate and returns the session cookie
func LoginCookie(t *testing.T, gate *auth.Gate, username, password string) *http.Cookie {
	t.Helper()

	login, err := gate.Authenticate(context.Background(), username, password)
	if err != nil {
		t.Fatalf("Failed to log in %q: %v", username, err)
	}

	return &http.Cookie{Name: "session", Value: login.Token}
}

// ValidPhotoDataURI returns a small PNG encoded as a data URI
func ValidPhotoDataURI() string {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a urlencoded form request carrying the given cookies
func MakeFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// WithCookies adds cookies to req and returns it
func WithCookies(req *http.Request, cookies ...*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %s, got %s", location, got)
	}
}

// Flash returns the flash message set on the response, or ""
func Flash(w *httptest.ResponseRecorder) string {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return views.PopFlash(httptest.NewRecorder(), req)
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
