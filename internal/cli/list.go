package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/pagination"
	"github.com/roach88/shelby/internal/repository"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Column string
	Offset int
	Limit  int
	Order  string
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Table  string                       `json:"table"`
	Query  string                       `json:"query"`
	Rows   []any                        `json:"rows"`
	Labels map[string]map[string]string `json:"labels"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List one page of a table",
		Long: `List one page of rows of a table, newest first by default.

Foreign keys are shown with the label of the row they point to. Only the
columns reported by "shelby tables" can be used with --column.

Examples:
  shelby list persons
  shelby list documents --column received --order asc --limit 20
  shelby list entries --offset 40 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Column, "column", "", "column to order by (default: first sortable column)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of rows to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "rows per page (default from config)")
	cmd.Flags().StringVar(&opts.Order, "order", "desc", "sort order (asc|desc)")

	return cmd
}

func runList(opts *ListOptions, table string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	listing, ok := model.Lookup(table)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownTable,
			fmt.Sprintf("unknown table %s (known: %s)", table, strings.Join(model.TableNames(), ", ")), nil)
	}

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	params := url.Values{}
	if opts.Column != "" {
		params.Set("column", opts.Column)
	}
	limit := opts.Limit
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Listing.DefaultLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(opts.Offset))
	params.Set("order", opts.Order)

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := listing.List(ctx, st, params, repository.WithQueryTimeout(cfg.QueryTimeout()))
	if err != nil {
		if isPaginationError(err) {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidPage, "invalid page", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list "+table, err)
	}

	labels, err := loadLabels(ctx, st, listing.Table)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to load labels", err)
	}
	formatter.PassID = labels.PassID().String()
	formatter.VerboseLog("listed %d row(s) of %s, label pass %s", len(rows), table, formatter.PassID)

	result := ListResult{
		Table:  table,
		Query:  params.Encode(),
		Rows:   rows,
		Labels: labels.Snapshot(),
	}
	return formatter.Render(result, func(w io.Writer) error {
		texts := make([]map[string]string, len(rows))
		for i, row := range rows {
			text, err := rowText(listing.Table, row, labels)
			if err != nil {
				return err
			}
			texts[i] = text
		}
		if len(texts) == 0 {
			_, err := fmt.Fprintf(w, "No rows in %s.\n", table)
			return err
		}
		return writeRows(w, presentFields(rowFields(listing.Table), texts), texts)
	})
}

func isPaginationError(err error) bool {
	return errors.Is(err, pagination.ErrInvalidColumn) ||
		errors.Is(err, pagination.ErrInvalidOrder) ||
		errors.Is(err, pagination.ErrInvalidOffset) ||
		errors.Is(err, pagination.ErrInvalidLimit)
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
