// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/testutil"
)

type testApp struct {
	handler  http.Handler
	services *Services
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	d := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.PhotoDir = filepath.Join(t.TempDir(), "photos")

	store, err := photos.NewStore(cfg.PhotoDir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	services := NewServices(d, cfg, store)
	return &testApp{handler: NewRouter(services, cfg), services: services}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// login posts the login form and returns the session cookie
func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	w := a.do(testutil.MakeFormRequest("POST", "/login", url.Values{
		"username": {username},
		"password": {password},
	}))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login as %s failed: %d %s", username, w.Code, w.Header().Get("Location"))
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest("GET", "/", nil))

	testutil.AssertRedirect(t, w, "/login")

	// Unknown paths are not swallowed by the root route
	w = app.do(httptest.NewRequest("GET", "/nope", nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRouteExistence(t *testing.T) {
	app := newTestApp(t)

	// Routes respond (handler or gate is invoked)
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/register"},
		{"POST", "/register"},
		{"GET", "/login"},
		{"POST", "/login"},
		{"GET", "/logout"},
		{"GET", "/vote"},
		{"POST", "/vote"},
		{"GET", "/admin"},
		{"GET", "/voters"},
		{"GET", "/results-data"},
		{"GET", "/photos/user_1.png"},
		{"GET", "/candidates"},
		{"POST", "/candidates"},
		{"POST", "/edit_candidate/1"},
		{"DELETE", "/delete_candidate/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := app.do(httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code == http.StatusMethodNotAllowed || w.Code == http.StatusNotFound {
				t.Errorf("Route %s %s returned %d, expected route handler to exist", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/vote"},
		{"GET", "/delete_candidate/1"},
		{"PUT", "/edit_candidate/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := app.do(httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/vote", "/admin", "/voters", "/candidates", "/results-data", "/logout"} {
		t.Run(path, func(t *testing.T) {
			w := app.do(httptest.NewRequest("GET", path, nil))

			testutil.AssertRedirect(t, w, "/login")
			if flash := testutil.Flash(w); flash != middleware.LoginRequiredMessage {
				t.Errorf("Expected flash %q, got %q", middleware.LoginRequiredMessage, flash)
			}
		})
	}
}

func TestVoterCannotReachAdmin(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.services.Gate.Register(t.Context(), "alice", "pw1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	cookie := app.login(t, "alice", "pw1")

	t.Run("pages redirect to vote", func(t *testing.T) {
		for _, path := range []string{"/admin", "/voters", "/candidates"} {
			w := app.do(testutil.WithCookies(httptest.NewRequest("GET", path, nil), cookie))

			testutil.AssertRedirect(t, w, "/vote")
			if flash := testutil.Flash(w); flash != middleware.NotAuthorizedMessage {
				t.Errorf("%s: expected flash %q, got %q", path, middleware.NotAuthorizedMessage, flash)
			}
		}
	})

	t.Run("JSON routes answer 403", func(t *testing.T) {
		requests := []*http.Request{
			httptest.NewRequest("GET", "/results-data", nil),
			httptest.NewRequest("GET", "/photos/user_1.png", nil),
			testutil.MakeFormRequest("POST", "/edit_candidate/1", url.Values{"name": {"X"}}),
			httptest.NewRequest("DELETE", "/delete_candidate/1", nil),
		}
		for _, req := range requests {
			w := app.do(testutil.WithCookies(req, cookie))

			testutil.AssertStatus(t, w, http.StatusForbidden)
			if strings.TrimSpace(w.Body.String()) != `{"error":"Unauthorized"}` {
				t.Errorf("%s %s: unexpected body %s", req.Method, req.URL.Path, w.Body.String())
			}
		}
	})
}

func TestAdminIsSentToDashboard(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.services.Gate.SeedAdmin(t.Context(), "admin", "admin123"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	cookie := app.login(t, "admin", "admin123")

	w := app.do(testutil.WithCookies(httptest.NewRequest("GET", "/vote", nil), cookie))
	testutil.AssertRedirect(t, w, "/admin")

	w = app.do(testutil.WithCookies(httptest.NewRequest("GET", "/admin", nil), cookie))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("Cache-Control") == "" {
		t.Error("Expected session pages to be marked uncacheable")
	}
}

func TestBodyLimit(t *testing.T) {
	app := newTestApp(t)

	big := strings.Repeat("a", 17<<20)
	req := testutil.MakeFormRequest("POST", "/register", url.Values{"username": {"x"}, "password": {big}})
	w := app.do(req)

	testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
}
