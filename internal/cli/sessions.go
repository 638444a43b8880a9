package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SessionInfo is one resolved session window.
type SessionInfo struct {
	Name       string `json:"name"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Complement bool   `json:"complement,omitempty"`
	Overnight  bool   `json:"overnight,omitempty"`
}

// SessionList is the sessions command payload.
type SessionList struct {
	Symbol   string        `json:"symbol"`
	Sessions []SessionInfo `json:"sessions"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions <symbol>",
		Short: "List the session windows configured for a symbol",
		Long: `List the session windows a query spec can reference for a symbol:
the built-in defaults merged with the --sessions config file, with
per-symbol overrides applied.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSessions(opts *RootOptions, symbol string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadSessionConfig(opts)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	names := cfg.ListSessions(symbol)
	list := SessionList{Symbol: symbol, Sessions: make([]SessionInfo, 0, len(names))}
	for _, name := range names {
		w, ok := cfg.SessionWindow(symbol, name)
		if !ok {
			continue
		}
		list.Sessions = append(list.Sessions, SessionInfo{
			Name:       name,
			Start:      w.Start,
			End:        w.End,
			Complement: w.Complement,
			Overnight:  w.CrossesMidnight(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	fmt.Fprintf(formatter.Writer, "Sessions for %s:\n", symbol)
	for _, s := range list.Sessions {
		span := fmt.Sprintf("%s-%s", s.Start, s.End)
		switch {
		case s.Complement:
			fmt.Fprintf(formatter.Writer, "  %s: outside %s\n", s.Name, span)
		case s.Overnight:
			fmt.Fprintf(formatter.Writer, "  %s: %s (overnight)\n", s.Name, span)
		default:
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.Name, span)
		}
	}
	return nil
}
