// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Body Limit

LimitBody wraps the whole mux and caps request bodies (16 MiB by default)
so an oversized photo upload fails with 413 instead of exhausting memory.

# Sessions

The session token lives in the HttpOnly "session" cookie:

	middleware.SetSessionCookie(w, login.Token, login.ExpiresAt, cfg.SecureCookies)
	middleware.ClearSessionCookie(w, cfg.SecureCookies)

RequireLogin resolves the cookie through auth.Gate and stores the user in
the request context; read it back with CurrentUser. Anonymous visitors are
redirected to /login with a flash message.

# Capabilities

RequireCapability gates a route on what the user's role can do rather than
on the role itself. The deny behaviour is chosen per route:

	middleware.RequireCapability(models.CapManage,
		middleware.RedirectTo("/vote", middleware.NotAuthorizedMessage), h.Dashboard)

	middleware.RequireCapability(models.CapManage, middleware.JSONForbidden, h.Create)

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Name required")

Parse JSON request bodies:

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Logged with logins.
*/
package middleware
