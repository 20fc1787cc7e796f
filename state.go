package goSession

// Phase is the lifecycle position of a Store.
type Phase uint8

const (
	// PhaseUninitialized lasts until Hydrate completes. The session is unknown.
	PhaseUninitialized Phase = iota
	// PhaseAuthenticating means a login call is in flight.
	PhaseAuthenticating
	// PhaseAuthenticated means an admin and token are held.
	PhaseAuthenticated
	// PhaseUnauthenticated means no session is held.
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Access is the decision a route guard should take.
type Access uint8

const (
	// AccessPending means hydration has not finished; render a placeholder
	// rather than redirecting.
	AccessPending Access = iota
	AccessGranted
	AccessDenied
)

func (a Access) String() string {
	switch a {
	case AccessPending:
		return "pending"
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// State is a value snapshot of the Store. Admin is a copy; mutating it does
// not affect the Store.
//
// Revision increases with every committed change, so subscribers can discard
// snapshots older than one they already handled.
type State struct {
	Admin       *Admin
	Token       string
	IsLoading   bool
	Error       string
	ErrorKind   ErrorKind
	HasHydrated bool
	Revision    uint64
}

// IsAuthenticated reports whether a session is held.
func (s State) IsAuthenticated() bool {
	return s.Admin != nil && s.Token != ""
}

func (s State) Phase() Phase {
	switch {
	case !s.HasHydrated:
		return PhaseUninitialized
	case s.IsLoading:
		return PhaseAuthenticating
	case s.IsAuthenticated():
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Access maps the snapshot onto a guard decision. A login in flight over an
// existing session keeps access granted.
func (s State) Access() Access {
	switch {
	case !s.HasHydrated:
		return AccessPending
	case s.IsAuthenticated():
		return AccessGranted
	default:
		return AccessDenied
	}
}

func (s State) clone() State {
	s.Admin = s.Admin.Clone()
	return s
}
