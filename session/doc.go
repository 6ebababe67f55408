// Package session provides the Redis-backed renewal session store.
//
// A session entry maps a renewal token to the email of the account that owns
// it. Entries are never deleted on revocation: they are overwritten with an
// empty value and a short TTL (a tombstone), so requests already in flight
// with the old token observe "logged out" rather than a missing key race.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations). It does NOT interpret
// tokens or compare identities; those decisions belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goAccount or jwt (no upward imports).
//   - Report a Redis failure as a missing session.
package session
