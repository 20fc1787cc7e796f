package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	goSession "github.com/MrEthical07/goSession"
)

// Exit codes for adminctl commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Login rejected or no session held
	ExitCommandError = 2 // Bad configuration, storage or transport setup
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err, defaulting to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// StateView is the printable form of a session snapshot. The token itself
// is never printed.
type StateView struct {
	Phase         string           `json:"phase"`
	Access        string           `json:"access"`
	Authenticated bool             `json:"authenticated"`
	HasToken      bool             `json:"has_token"`
	Admin         *goSession.Admin `json:"admin,omitempty"`
	Error         string           `json:"error,omitempty"`
	ErrorKind     string           `json:"error_kind,omitempty"`
	Revision      uint64           `json:"revision"`
}

// NewStateView converts a snapshot.
func NewStateView(s goSession.State) StateView {
	v := StateView{
		Phase:         s.Phase().String(),
		Access:        s.Access().String(),
		Authenticated: s.IsAuthenticated(),
		HasToken:      s.Token != "",
		Admin:         s.Admin,
		Error:         s.Error,
		Revision:      s.Revision,
	}
	if s.ErrorKind != goSession.KindNone {
		v.ErrorKind = s.ErrorKind.String()
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStateText(w io.Writer, v StateView) {
	switch {
	case v.Authenticated:
		a := v.Admin
		fmt.Fprintf(w, "Logged in as %s <%s>", a.Name, a.Email)
		if a.RoleLabel != "" {
			fmt.Fprintf(w, " (%s)", a.RoleLabel)
		}
		fmt.Fprintln(w)
	case v.Error != "":
		fmt.Fprintf(w, "Not logged in: %s\n", v.Error)
	default:
		fmt.Fprintln(w, "Not logged in")
	}
}
