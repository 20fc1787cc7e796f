// Package goSession is the client-side session store for the admin
// back-office: it turns a login call into a durable, rehydratable session,
// arbitrates concurrent login attempts, classifies transport and server
// failures into user-facing messages, and separates local session teardown
// from the best-effort server notification on logout.
//
// A single [Store] is built once at application start with [Builder] and
// injected into every consumer. There is no package-level state.
//
// # Lifecycle
//
//	store, err := goSession.New().
//		WithAuthClient(client).
//		WithPersister(slot).
//		Build()
//	store.Hydrate(ctx)          // exactly once, never fails
//	err = store.Login(ctx, creds)
//	store.Logout(ctx)           // synchronous, never fails
//	store.Close()
//
// # Invariants
//
//   - Admin and Token are either both set or both empty in every observable [State].
//   - At most one Login call is in flight; a second one returns [ErrLoginInFlight]
//     without reaching the network.
//   - The persisted slot mirrors the last committed admin/token pair.
//   - HasHydrated becomes true exactly once and never reverts. Before that,
//     consumers must treat the session as unknown, not as logged out.
//
// # Architecture boundaries
//
// goSession is the public surface: [Store], [Builder], [Config], [State],
// [ErrorKind], and the [AuthClient] and [Persister] boundaries. The HTTP auth
// client lives in authclient/, storage slots in persist/, the record encoding
// in session/. Flow orchestration, audit dispatch, and detached task tracking
// live under internal/.
//
// # What this package must NOT do
//
//   - Retry logins or logout notifications, or refresh tokens.
//   - Impose a timeout on Login; the auth client owns deadlines.
//   - Log or persist passwords, and never log bearer tokens.
package goSession
