// Package internal groups helpers that are private to goSession.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - cli: the adminctl command tree, its environment config and wiring
//   - flows: login and logout-notification orchestration used by the Store
//   - tasks: tracked detached goroutines with bounded drain on close
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
