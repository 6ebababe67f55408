// Package jwt issues and verifies the two credentials used by goAccount: a
// short-lived HS512 access token carrying the account identity, and a
// long-lived renewal token carrying only an expiry and a random id.
//
// Decode failures never escape as parser errors; they are always a
// [*DecodeError] whose Kind distinguishes signature, expiry, structure and
// algorithm problems.
package jwt
