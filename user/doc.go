// Package user defines the account record and the [Directory] contract that
// persistent stores implement. [Memory] is an in-process Directory for tests
// and single-node development; user/postgres and user/sqlite hold the SQL
// implementations.
package user
