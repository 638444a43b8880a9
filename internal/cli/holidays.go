package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/barsql/internal/market"
)

// HolidayList is the holidays command payload.
type HolidayList struct {
	Symbol     string   `json:"symbol"`
	Year       int      `json:"year"`
	FullClose  []string `json:"full_close"`
	EarlyClose []string `json:"early_close"`
}

// NewHolidaysCommand creates the holidays command.
func NewHolidaysCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays <symbol> <year>",
		Short: "List a symbol's market holidays for one year",
		Long: `List the full-close and early-close dates the holiday filters would
apply for a symbol in one calendar year, derived from the symbol's
exchange calendar.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHolidays(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runHolidays(opts *RootOptions, symbol, yearArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	year, err := strconv.Atoi(yearArg)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("invalid year %q", yearArg), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid year %q", yearArg))
	}

	provider := &market.CalendarProvider{}
	holidays, err := provider.HolidaysForYear(symbol, year)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	list := HolidayList{
		Symbol:     symbol,
		Year:       year,
		FullClose:  holidays.FullClose,
		EarlyClose: holidays.EarlyClose,
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	fmt.Fprintf(formatter.Writer, "Holidays for %s in %d:\n", symbol, year)
	fmt.Fprintln(formatter.Writer, "Full close:")
	for _, d := range list.FullClose {
		fmt.Fprintf(formatter.Writer, "  %s\n", d)
	}
	if len(list.EarlyClose) > 0 {
		fmt.Fprintln(formatter.Writer, "Early close:")
		for _, d := range list.EarlyClose {
			fmt.Fprintf(formatter.Writer, "  %s\n", d)
		}
	}
	return nil
}
