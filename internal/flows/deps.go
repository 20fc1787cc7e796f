package flows

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// Deps groups flow dependency sets. The Store builds this once and delegates
// to the matching flow.
type Deps struct {
	Login  LoginDeps
	Logout LogoutDeps
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	InvalidResponse error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Authenticate func(ctx context.Context, email, password string) (*session.Admin, string, error)
	Errors       LoginErrors
}

// LogoutDeps captures logout notification dependencies.
type LogoutDeps struct {
	Notify func(ctx context.Context, token string) (string, error)
}
