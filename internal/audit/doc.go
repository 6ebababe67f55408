// Package audit relays account events (logins, reissues, logouts, profile
// changes) from the engine to a caller-supplied [Sink] without blocking the
// request path.
//
// The package never decides which events exist; the engine does.
package audit
