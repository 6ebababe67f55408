// Package password hashes and verifies account passwords.
//
// New hashes are argon2id PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Accounts migrated from the previous system carry bcrypt hashes. [Chain]
// verifies both and reports bcrypt hashes as needing an upgrade, so the
// Engine re-hashes them with argon2id after the next successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other goAccount package.
//   - Log plaintext passwords.
package password
