// Package audit implements async event dispatching for session lifecycle
// operations (login, logout, logout notification, hydration).
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with timestamp, type, admin, outcome, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit; that belongs to the Store.
//
// # What this package must NOT do
//
//   - Carry bearer tokens or passwords in events.
//   - Import goSession or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
