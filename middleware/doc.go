// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

WithLogging is chi-compatible:

	r.Use(chimw.RequestID, middleware.WithLogging)

Each request gets a zerolog logger tagged with method, path, remote address
and request id. Handlers fetch it with Logger(r). Completion is logged with
status, bytes and duration; 5xx responses log at error level.

# CORS Middleware

Enable cross-origin requests for frontend access:

	r.Use(middleware.CORS)

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Controller-Key, X-Participant-Token.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
