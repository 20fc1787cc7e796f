// Package persist provides single-slot storage backends for the admin
// session record: an in-memory slot, an atomically written file (optionally
// sealed with a passphrase), and a Redis key.
//
// Every backend stores the bytes produced by session.Encode and decodes them
// with session.Decode on Load. Load reports found=false when the slot is
// absent or holds the null pair; decode failures are returned so the caller
// can tell a corrupt slot from an I/O error (see session.Unusable).
//
// # What this package must NOT do
//
//   - Import goSession (the root package depends on this one in tests and
//     in cmd/adminctl, never the other way around).
//   - Interpret the session; expiry and access decisions belong to the Store.
package persist
