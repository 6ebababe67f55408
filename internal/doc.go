// Package internal groups helpers private to goAccount.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - config: process settings from the environment and .env files
//   - flows: pure-function orchestrators for login and reissue
//   - logging: zerolog construction
//   - rate: Redis-backed failed-login counters
//   - validate: request validation with readable field errors
package internal
