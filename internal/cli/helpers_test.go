package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeAPI struct {
	mu           sync.Mutex
	loginStatus  int
	loginBody    string
	logins       int
	logoutTokens []string
	requestIDs   []string
}

func newFakeAPI(t *testing.T) (*httptest.Server, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{
		loginStatus: http.StatusOK,
		loginBody:   `{"admin":{"id":1,"name":"Ada","email":"ada@example.com","role":"owner","role_label":"Owner"},"token":"tok-1"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		api.mu.Lock()
		api.logins++
		api.requestIDs = append(api.requestIDs, r.Header.Get(requestIDHeader))
		status, resp := api.loginStatus, api.loginBody
		api.mu.Unlock()

		if body.Password != "secret" && status == http.StatusOK {
			status, resp = http.StatusUnauthorized, `{"message":"invalid credentials"}`
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	})
	mux.HandleFunc("POST /admin/logout", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.logoutTokens = append(api.logoutTokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		api.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"bye"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, api
}

func (a *fakeAPI) loggedOut() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.logoutTokens...)
}

func (a *fakeAPI) loginRequestIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requestIDs...)
}

func (a *fakeAPI) loginCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// runCLI executes a fresh root command against vars instead of the process
// environment.
func runCLI(t *testing.T, vars map[string]string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	opts := &RootOptions{loadConfig: func(...string) (Config, error) {
		return LoadConfigFrom(vars)
	}}
	cmd := newRootCommand(opts)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func fileVars(apiURL, path string) map[string]string {
	return map[string]string{
		"ADMINCTL_API_URL":   apiURL,
		"ADMINCTL_STORAGE":   StorageFile,
		"ADMINCTL_FILE_PATH": path,
	}
}
