package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/barsql/internal/market"
	"github.com/roach88/barsql/internal/sqlgen"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Sessions string // optional session config file (YAML)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the barsql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "barsql",
		Short: "barsql - deterministic SQL compiler for OHLCV bar analysis",
		Long: `Compile typed query specs over minute-resolution OHLCV bars into
deterministic, injection-safe DuckDB SQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Sessions, "sessions", "", "session config file (YAML), merged over built-in defaults")

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewHolidaysCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the command's output formatter with a fresh trace
// id. Verbose logs go to stderr so they never corrupt JSON output.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   newTraceID(),
	}
}

// loadSessionConfig resolves the session table: the --sessions file
// merged over defaults, or the defaults alone.
func loadSessionConfig(opts *RootOptions) (*market.SessionConfig, error) {
	if opts.Sessions == "" {
		return market.DefaultSessions(), nil
	}
	cfg, err := market.LoadSessions(opts.Sessions)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Path: opts.Sessions, Message: err.Error()}
	}
	return cfg, nil
}

// newAssembler wires a compiler from the global flags.
func newAssembler(opts *RootOptions) (*sqlgen.Assembler, error) {
	sessions, err := loadSessionConfig(opts)
	if err != nil {
		return nil, err
	}
	return sqlgen.NewAssembler(sessions, nil), nil
}
