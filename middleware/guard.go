package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// StateSource is satisfied by *goSession.Store.
type StateSource interface {
	State() goSession.State
}

// GuardOptions tunes the denied and pending responses.
type GuardOptions struct {
	// LoginURL receives browser navigations without a session. The original
	// path is passed as the "next" query parameter. Empty means always 401.
	LoginURL string
	// RetryAfter is advertised while the Store hydrates. Defaults to 1s.
	RetryAfter time.Duration
}

type stateContextKey struct{}

// StateFromContext returns the snapshot the guard admitted the request with.
func StateFromContext(ctx context.Context) (goSession.State, bool) {
	st, ok := ctx.Value(stateContextKey{}).(goSession.State)
	return st, ok
}

// AdminFromContext returns the admin the guard admitted the request with.
func AdminFromContext(ctx context.Context) (*goSession.Admin, bool) {
	st, ok := StateFromContext(ctx)
	if !ok || st.Admin == nil {
		return nil, false
	}
	return st.Admin, true
}

func Guard(source StateSource, opts GuardOptions) func(http.Handler) http.Handler {
	retryAfter := opts.RetryAfter
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	retrySeconds := strconv.Itoa(int((retryAfter + time.Second - 1) / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			st := source.State()
			switch st.Access() {
			case goSession.AccessPending:
				w.Header().Set("Retry-After", retrySeconds)
				http.Error(w, "session not ready", http.StatusServiceUnavailable)
			case goSession.AccessGranted:
				ctx := context.WithValue(r.Context(), stateContextKey{}, st)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				if opts.LoginURL != "" && wantsHTML(r) {
					http.Redirect(w, r, loginLocation(opts.LoginURL, r), http.StatusSeeOther)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
		})
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func loginLocation(loginURL string, r *http.Request) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	q := u.Query()
	q.Set("next", r.URL.RequestURI())
	u.RawQuery = q.Encode()
	return u.String()
}
