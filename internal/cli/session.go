package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email         string
	PasswordStdin bool
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the admin session",
		Long: `Log in against the auth API and store the returned session.

The password is read from stdin with --password-stdin, otherwise from
ADMINCTL_PASSWORD.

Examples:
  adminctl login --email ops@example.com --password-stdin < secret.txt
  ADMINCTL_PASSWORD=... adminctl login -e ops@example.com --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "admin email (defaults to ADMINCTL_EMAIL)")
	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

func runLogin(opts *LoginOptions, cmd *cobra.Command) error {
	rt, cfg, err := opts.runtime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	creds := goSession.Credentials{Email: strings.TrimSpace(opts.Email), Password: cfg.Password}
	if creds.Email == "" {
		creds.Email = strings.TrimSpace(cfg.Email)
	}
	if opts.PasswordStdin {
		creds.Password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "read password", err)
		}
	}
	if creds.Email == "" || creds.Password == "" {
		return NewExitError(ExitCommandError, "email and password are required")
	}

	ctx := goSession.WithRequestID(cmd.Context(), uuid.NewString())
	if err := rt.Store.Login(ctx, creds); err != nil {
		var le *goSession.LoginError
		if errors.As(err, &le) {
			if opts.Format == "json" {
				_ = writeJSON(cmd.OutOrStdout(), NewStateView(rt.Store.State()))
			}
			return WrapExitError(ExitFailure, "login failed", err)
		}
		return WrapExitError(ExitCommandError, "login failed", err)
	}

	return printState(opts.RootOptions, cmd, rt.Store.State())
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the admin session and notify the server",
		Long: `Clear the stored admin session. The server is notified in the
background; the command waits up to ADMINCTL_DRAIN_TIMEOUT for that
notification before exiting. A failed notification does not fail the
command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := rootOpts.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			held := rt.Store.State().IsAuthenticated()
			rt.Store.Logout(goSession.WithRequestID(cmd.Context(), uuid.NewString()))

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"logged_out": held})
			}
			if held {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No session held")
			}
			return nil
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show the stored admin session",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := rootOpts.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			st := rt.Store.State()
			if err := printState(rootOpts, cmd, st); err != nil {
				return err
			}
			if check && !st.IsAuthenticated() {
				return NewExitError(ExitFailure, "no session held")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "exit with status 1 when no session is held")

	return cmd
}

func printState(opts *RootOptions, cmd *cobra.Command, st goSession.State) error {
	view := NewStateView(st)
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	writeStateText(cmd.OutOrStdout(), view)
	return nil
}
