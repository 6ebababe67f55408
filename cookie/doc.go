// Package cookie moves the renewal token in and out of HTTP cookies.
//
// Extraction is tolerant: a missing cookie yields "" and callers decide what
// an empty credential means. The generic [Serialize]/[Deserialize] helpers are
// independent of the renewal flow and carry small JSON values in a cookie.
package cookie
