package flows

import (
	"context"
	"errors"
	"fmt"
)

// LogoutNotifyResult reports how the server-side logout notification went.
// It is informational only.
type LogoutNotifyResult struct {
	Message  string
	Err      error
	Panicked bool
}

// RunLogoutNotify tells the server the token is no longer in use. A panic in
// the auth client is recovered and reported as an error.
func RunLogoutNotify(ctx context.Context, token string, deps LogoutDeps) (res LogoutNotifyResult) {
	if deps.Notify == nil {
		return LogoutNotifyResult{Err: errors.New("logout flow not wired")}
	}

	defer func() {
		if r := recover(); r != nil {
			res = LogoutNotifyResult{Err: fmt.Errorf("logout notify panicked: %v", r), Panicked: true}
		}
	}()

	msg, err := deps.Notify(ctx, token)
	return LogoutNotifyResult{Message: msg, Err: err}
}
