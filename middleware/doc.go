// Package middleware gates net/http handlers on the local admin session.
//
// [Guard] reads a snapshot from the session Store on every request and maps
// its Access decision onto HTTP:
//
//   - pending (not hydrated yet): 503 with Retry-After, never a redirect, so a
//     restored session is not bounced to the login page during start-up.
//   - denied: a redirect to the login page for browser navigations, 401
//     otherwise.
//   - granted: the snapshot is placed in the request context.
//
// # What this package must NOT do
//
//   - Call Login or Logout; the guard only reads state.
//   - Verify tokens; the remote API is the authority.
package middleware
