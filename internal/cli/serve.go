package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const requestIDHeader = "X-Request-ID"

// HandlerConfig configures the local session gateway.
type HandlerConfig struct {
	// Upstream is the admin API that /api/* is proxied to. Nil disables the
	// proxy.
	Upstream *url.URL
	Guard    middleware.GuardOptions
	Logger   *slog.Logger
}

// NewHandler returns the gateway router:
//
//	GET  /metrics          Prometheus text exposition
//	GET  /session          current session snapshot
//	POST /session/login    {"email","password"}
//	POST /session/logout
//	*    /api/*            guarded reverse proxy carrying the bearer token
func NewHandler(store *goSession.Store, cfg HandlerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)

	r.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporter(store).Handler())
	r.Route("/session", func(s chi.Router) {
		s.Get("/", sessionHandler(store))
		s.Post("/login", loginHandler(store))
		s.Post("/logout", logoutHandler(store))
	})

	if cfg.Upstream != nil {
		r.With(middleware.Guard(store, cfg.Guard)).Handle("/api/*", newProxy(cfg.Upstream, logger))
	}

	return r
}

// requestID adopts the caller's X-Request-ID or mints one, and attaches it
// to the request context for the Store and the auth client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(goSession.WithRequestID(r.Context(), id)))
	})
}

func sessionHandler(store *goSession.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, NewStateView(store.State()))
	}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(store *goSession.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		creds := goSession.Credentials{Email: strings.TrimSpace(body.Email), Password: body.Password}
		if creds.Email == "" || creds.Password == "" {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
			return
		}

		err := store.Login(r.Context(), creds)
		if err == nil {
			respondJSON(w, http.StatusOK, NewStateView(store.State()))
			return
		}

		var le *goSession.LoginError
		switch {
		case errors.As(err, &le):
			respondJSON(w, loginStatus(le.Kind), map[string]string{
				"error":      le.Message,
				"error_kind": le.Kind.String(),
			})
		case errors.Is(err, goSession.ErrLoginInFlight), errors.Is(err, goSession.ErrLoginSuperseded):
			respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
	}
}

func loginStatus(kind goSession.ErrorKind) int {
	switch kind {
	case goSession.KindInvalidCredentials:
		return http.StatusUnauthorized
	case goSession.KindForbidden:
		return http.StatusForbidden
	case goSession.KindRateLimited:
		return http.StatusTooManyRequests
	case goSession.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func logoutHandler(store *goSession.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Logout(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func newProxy(upstream *url.URL, logger *slog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Header.Del("Authorization")
		if st, ok := middleware.StateFromContext(req.Context()); ok {
			req.Header.Set("Authorization", "Bearer "+st.Token)
		}
		if id := goSession.RequestIDFromContext(req.Context()); id != "" {
			req.Header.Set(requestIDHeader, id)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logger.WarnContext(req.Context(), "upstream request failed",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		respondJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
	}
	return proxy
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local session gateway",
		Long: `Serve the session over HTTP on a local address.

/api/* is proxied to ADMINCTL_UPSTREAM with the session's bearer token
while a session is held; /session reports and changes the session;
/metrics exposes session metrics.

Examples:
  ADMINCTL_UPSTREAM=https://api.example.com adminctl serve --addr 127.0.0.1:8089`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cfg, err := rootOpts.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr != "" {
				cfg.ListenAddr = addr
			}
			return runServe(cmd.Context(), rt, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to ADMINCTL_LISTEN_ADDR)")

	return cmd
}

func runServe(ctx context.Context, rt *Runtime, cfg Config) error {
	hcfg := HandlerConfig{
		Guard: middleware.GuardOptions{
			LoginURL:   cfg.LoginURL,
			RetryAfter: cfg.RetryAfter,
		},
		Logger: rt.Logger,
	}
	if cfg.Upstream != "" {
		u, err := url.Parse(cfg.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid upstream %q", cfg.Upstream))
		}
		hcfg.Upstream = u
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewHandler(rt.Store, hcfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	rt.Logger.Info("session gateway listening", slog.String("addr", cfg.ListenAddr))

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTTL)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Warn("gateway shutdown incomplete", slog.String("error", err.Error()))
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return WrapExitError(ExitCommandError, "serve", runErr)
	}
	return nil
}
