package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// LoginResult is the outcome of one login call. Record is complete iff Err is nil.
type LoginResult struct {
	Record  session.Record
	Err     error
	Latency time.Duration
}

// RunLogin performs the auth call and validates that the response carries both
// an admin and a token. A response missing either is reported as the host's
// invalid-response error; partial data is never returned.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	if deps.Authenticate == nil {
		return LoginResult{Err: errors.New("login flow not wired")}
	}

	start := time.Now()
	admin, token, err := deps.Authenticate(ctx, email, password)
	latency := time.Since(start)
	if err != nil {
		return LoginResult{Err: err, Latency: latency}
	}

	rec := session.Record{Admin: admin.Clone(), Token: token}
	if !rec.Complete() {
		return LoginResult{Err: invalidResponse(deps.Errors, admin, token), Latency: latency}
	}

	return LoginResult{Record: rec, Latency: latency}
}

func invalidResponse(errs LoginErrors, admin *session.Admin, token string) error {
	base := errs.InvalidResponse
	if base == nil {
		base = errors.New("invalid response from server")
	}

	switch {
	case admin == nil && token == "":
		return fmt.Errorf("%w: missing admin and token", base)
	case admin == nil:
		return fmt.Errorf("%w: missing admin", base)
	default:
		return fmt.Errorf("%w: missing token", base)
	}
}
