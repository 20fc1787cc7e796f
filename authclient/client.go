package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	defaultLoginPath  = "/admin/login"
	defaultLogoutPath = "/admin/logout"
	defaultTimeout    = 15 * time.Second
	maxBodyBytes      = 1 << 20

	// RequestIDHeader is sent with every request.
	RequestIDHeader = "X-Request-ID"
)

// Config points the client at the auth API.
type Config struct {
	BaseURL    string
	LoginPath  string
	LogoutPath string
	// Timeout bounds each request. Defaults to 15s; negative disables it.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the pooled client built from go-cleanhttp.
	HTTPClient *http.Client
}

// Client implements goSession.AuthClient over HTTP.
type Client struct {
	http      *http.Client
	loginURL  string
	logoutURL string
	userAgent string
}

var _ goSession.AuthClient = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("auth api base URL required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("auth api base URL must be http(s): %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = cleanhttp.DefaultPooledClient()
		switch {
		case cfg.Timeout > 0:
			hc.Timeout = cfg.Timeout
		case cfg.Timeout == 0:
			hc.Timeout = defaultTimeout
		}
	}

	return &Client{
		http:      hc,
		loginURL:  base + pathOr(cfg.LoginPath, defaultLoginPath),
		logoutURL: base + pathOr(cfg.LogoutPath, defaultLogoutPath),
		userAgent: cfg.UserAgent,
	}, nil
}

func pathOr(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return def
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Admin *goSession.Admin `json:"admin"`
	User  *goSession.Admin `json:"user"`
	Token string           `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m messageResponse) text() string {
	if s := strings.TrimSpace(m.Message); s != "" {
		return s
	}
	return strings.TrimSpace(m.Error)
}

// Login returns whatever the server sent on a 2xx; validating that both the
// admin and the token are present is left to the Store. A 2xx body that is
// not JSON is reported as goSession.ErrInvalidResponse.
func (c *Client) Login(ctx context.Context, creds goSession.Credentials) (*goSession.LoginResult, error) {
	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, err
	}

	status, raw, err := c.post(ctx, c.loginURL, "", body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, statusError(status, raw)
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", goSession.ErrInvalidResponse, err)
	}

	admin := resp.Admin
	if admin == nil {
		admin = resp.User
	}
	return &goSession.LoginResult{Admin: admin, Token: resp.Token}, nil
}

// Logout tells the server token is no longer in use and returns its message.
func (c *Client) Logout(ctx context.Context, token string) (string, error) {
	status, raw, err := c.post(ctx, c.logoutURL, token, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", statusError(status, raw)
	}

	var resp messageResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &resp)
	}
	return resp.text(), nil
}

func (c *Client) post(ctx context.Context, url, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := goSession.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, transportError(ctx, err)
	}
	return resp.StatusCode, raw, nil
}

func statusError(status int, raw []byte) error {
	var resp messageResponse
	_ = json.Unmarshal(raw, &resp)
	return &goSession.AuthError{Status: status, Message: resp.text()}
}

// transportError flags failures that never produced a response. Caller
// cancellation is passed through so it is not mistaken for an outage.
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("auth api: %w", ctx.Err())
	}

	var ne net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
	return &goSession.AuthError{
		Timeout:      timeout,
		NetworkError: !timeout,
		Err:          err,
	}
}
