// Package session defines the persisted admin session record and its
// schema-versioned JSON encoding.
//
// # Record envelope
//
// A record is stored as a single JSON object:
//
//	{"v":1,"admin":{"id":1,"name":"...","email":"...","role":"...","role_label":"..."},"token":"..."}
//
// A cleared slot is encoded with null admin and token. Records written before
// the envelope was versioned carry no "v" field and are read as version 1
// because their shape is identical. Records with an unknown version are
// rejected rather than migrated.
//
// # Architecture boundaries
//
// This package owns the [Record] and [Admin] models and the [Encode]/[Decode]
// pair. It does NOT perform I/O, talk to the auth API, or decide whether a
// restored session is still usable; those belong to the persist adapters and
// the Store.
//
// # What this package must NOT do
//
//   - Import goSession, persist, or authclient (no upward imports).
//   - Persist loading or error state; only the admin/token pair is durable.
package session
