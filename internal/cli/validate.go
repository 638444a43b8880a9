package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/barsql/internal/queryspec"
)

// ValidationIssue is one reported spec problem.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <spec-file>",
		Short: "Validate a query spec without emitting SQL",
		Long: `Validate a query spec (YAML or CUE) without emitting SQL.

Runs the same checks as build - structural validation plus session and
comparison-dimension resolution - and reports every problem at once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := LoadQuerySpec(specPath)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Loaded spec %s: symbol=%s source=%s op=%s",
		specPath, spec.Symbol, spec.Source, spec.Op())

	asm, err := newAssembler(opts)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	// A dry-run build catches what structural validation alone cannot:
	// unknown session names and uninferable comparison dimensions.
	if _, err := asm.Build(spec); err != nil {
		var verrs queryspec.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		return outputCommandError(formatter, err)
	}

	return outputValidateSuccess(formatter)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintln(formatter.Writer, "✓ Spec valid")
	return nil
}

// outputValidationErrors outputs the collected spec errors.
// Invalid specs exit with code 1; nothing partial is emitted.
func outputValidationErrors(formatter *OutputFormatter, verrs queryspec.ValidationErrors) error {
	issues := make([]ValidationIssue, len(verrs))
	for i, e := range verrs {
		issues[i] = ValidationIssue{
			Field:   e.Field,
			Message: e.Message,
			Code:    MapFieldToErrorCode(e.Field),
		}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
			TraceID: formatter.TraceID,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("spec invalid with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Spec invalid")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		fmt.Fprintf(formatter.Writer, "  %s: %s (%s)\n", issue.Field, issue.Message, issue.Code)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitFailure, fmt.Sprintf("spec invalid with %d error(s)", len(issues)))
}
