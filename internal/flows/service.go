package flows

import "context"

// Service is the flow runner built once by the Store.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.Authenticate != nil && s.deps.Logout.Notify != nil
}

func (s Service) Login(ctx context.Context, email, password string) LoginResult {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) NotifyLogout(ctx context.Context, token string) LogoutNotifyResult {
	return RunLogoutNotify(ctx, token, s.deps.Logout)
}
