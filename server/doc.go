// Package server exposes the engine over HTTP with echo.
//
// Credentials travel as a bearer access token in the Authorization header
// and a renewal token in an http-only cookie. Errors are JSON objects of the
// form {"error": code, "message": text}; only upstream failures are
// retryable (503).
package server
