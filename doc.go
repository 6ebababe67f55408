// Package goAccount is the account and session engine: registration,
// password and social login, profile updates, and the reissue protocol that
// trades an access token plus a renewal credential for a fresh pair.
//
// An [Engine] is assembled once through [Builder.Build] and is safe for
// concurrent use afterwards. It owns no HTTP code; the server package adapts
// it to routes and the cookie package carries the renewal credential.
//
// # Reissue
//
// Reissue accepts an access token whose signature is valid even when it has
// expired, looks the renewal credential up in Redis, requires the stored
// email to match the token subject, and only then writes: the new renewal
// entry and a three-second tombstone for the old one, in one transaction.
// Every rejection leaves Redis untouched.
//
// All other paths, [Engine.Authenticate] included, reject expired tokens.
package goAccount
