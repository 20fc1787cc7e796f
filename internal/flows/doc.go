// Package flows contains the orchestration behind the Store's network-facing
// operations: performing a login call and sending the detached logout
// notification.
//
// Each flow function accepts a typed dependency struct and returns a result
// value. Flows never touch session state; committing a result is the Store's
// job.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Retry calls or impose timeouts the auth client does not.
package flows
