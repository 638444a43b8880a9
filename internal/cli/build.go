package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/barsql/internal/queryspec"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string // output file path
}

// BuildResult holds the compiled SQL and its provenance.
type BuildResult struct {
	Symbol    string `json:"symbol"`
	Source    string `json:"source"`
	SpecialOp string `json:"special_op"`
	SQL       string `json:"sql"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <spec-file>",
		Short: "Compile a query spec to SQL",
		Long: `Compile a query spec (YAML or CUE) into a single DuckDB SQL statement.

The output is deterministic: the same spec always compiles to
byte-identical SQL. An invalid spec is rejected whole, with every
problem reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write SQL to file instead of stdout")

	return cmd
}

func runBuild(opts *BuildOptions, specPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spec, err := LoadQuerySpec(specPath)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Loaded spec %s: symbol=%s source=%s op=%s",
		specPath, spec.Symbol, spec.Source, spec.Op())

	asm, err := newAssembler(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	sql, err := asm.Build(spec)
	if err != nil {
		var verrs queryspec.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		return outputCommandError(formatter, err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sql+"\n"), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("writing %s: %v", opts.Output, err))
		}
		formatter.VerboseLog("Wrote SQL to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(BuildResult{
			Symbol:    spec.Symbol,
			Source:    string(spec.Source),
			SpecialOp: string(spec.Op()),
			SQL:       sql,
		})
	}

	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, sql)
	}
	return nil
}

// outputCommandError reports a command-level failure (exit code 2).
func outputCommandError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, err.Error()), err)
}
