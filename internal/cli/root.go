package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	EnvFiles []string

	loadConfig func(envFiles ...string) (Config, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the adminctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{loadConfig: LoadConfig})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Back-office admin session client",
		Long: `adminctl keeps a single back-office admin session: it logs in against the
auth API, persists the session between runs, and logs out with a
best-effort server notification.

Configuration is read from ADMINCTL_* environment variables, optionally
preloaded from dotenv files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load before reading the environment")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// runtime loads the configuration and builds a hydrated Store. Logs go to
// the command's stderr.
func (o *RootOptions) runtime(cmd *cobra.Command) (*Runtime, Config, error) {
	load := o.loadConfig
	if load == nil {
		load = LoadConfig
	}
	cfg, err := load(o.EnvFiles...)
	if err != nil {
		return nil, Config{}, WrapExitError(ExitCommandError, "load configuration", err)
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, Config{}, WrapExitError(ExitCommandError, "build logger", err)
	}

	rt, err := NewRuntime(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, Config{}, WrapExitError(ExitCommandError, "initialize session store", err)
	}
	return rt, cfg, nil
}
