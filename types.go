package goSession

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// Admin is the identity of the logged-in back-office user.
type Admin = session.Admin

// Credentials is the login input. Non-emptiness is validated by the caller;
// the Store passes the values through untouched.
type Credentials struct {
	Email    string
	Password string
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", c.Email))
}

// LoginResult is what a successful AuthClient.Login returns. Both fields must
// be set; anything else is treated as an invalid server response.
type LoginResult struct {
	Admin *Admin
	Token string
}

// AuthClient is the remote authentication API boundary.
//
// Login fails with an error describing the transport or server failure,
// ideally an *[AuthError]. Logout returns the server's message; the Store
// ignores its outcome beyond logging it.
type AuthClient interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context, token string) (string, error)
}

// Persister is the durable single-slot storage for the session record.
//
// Load reports found=false when the slot is empty or absent. Save stores the
// given pair (an empty record stores the null pair). Clear wipes the slot
// without going through the encoder.
type Persister interface {
	Load(ctx context.Context) (rec session.Record, found bool, err error)
	Save(ctx context.Context, rec session.Record) error
	Clear(ctx context.Context) error
}

// ConnectivityProbe reports whether the client currently has network access.
// It is consulted only for failures that carry no server status.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// ConnectivityFunc adapts a function to ConnectivityProbe.
type ConnectivityFunc func(ctx context.Context) bool

func (f ConnectivityFunc) Online(ctx context.Context) bool { return f(ctx) }

// TokenInspector decides whether a restored token has already expired.
// Opaque tokens should return an error, which the Store treats as "keep".
type TokenInspector interface {
	Expired(token string, now time.Time) (bool, error)
}
