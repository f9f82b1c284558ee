package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/money"
)

// SummaryResult is the JSON payload of the summary command.
type SummaryResult struct {
	Accounts []model.AccountSummary `json:"accounts"`
	Total    money.Amount           `json:"total"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Sum the bookings per account and cost center",
		Long: `Sum every entry per account and cost center.

Rows are ordered by cost center, then category, then account.

Examples:
  shelby summary
  shelby summary --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, cmd)
		},
	}
}

func runSummary(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := model.LoadAccountSummaries(ctx, st)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to load summaries", err)
	}
	if summaries == nil {
		summaries = []model.AccountSummary{}
	}

	result := SummaryResult{Accounts: summaries, Total: model.Total(summaries)}
	return formatter.Render(result, func(w io.Writer) error {
		if len(summaries) == 0 {
			_, err := fmt.Fprintln(w, "No entries booked.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "COST CENTER\tCATEGORY\tACCOUNT\tAMOUNT\t")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", s.CostCenter, s.Category, s.Account, s.Amount)
		}
		fmt.Fprintf(tw, "\t\tTOTAL\t%s\t\n", result.Total)
		return tw.Flush()
	})
}
