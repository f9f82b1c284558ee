package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/repository"
)

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	Key    string                       `json:"key"`
	Row    any                          `json:"row"`
	Labels map[string]map[string]string `json:"labels"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show the row behind a key",
		Long: `Show the row stored under a canonical key such as /persons/3.

Exit codes:
  0 - Row found
  1 - No row under the key
  2 - Command error (malformed key, unknown table, database errors)

Examples:
  shelby show /documents/12
  shelby show /users/1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, key string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	listing, id, err := model.ResolveKey(key)
	if err != nil {
		if errors.Is(err, model.ErrUnknownTable) {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownTable, "unknown table in "+key, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeInvalidKey, "invalid key "+key, err)
	}

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	row, found, err := listing.Show(ctx, st, id, repository.WithQueryTimeout(cfg.QueryTimeout()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to select "+key, err)
	}
	if !found {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, "no row "+key, nil)
	}

	labels, err := loadLabels(ctx, st, listing.Table)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to load labels", err)
	}
	formatter.PassID = labels.PassID().String()

	result := ShowResult{Key: key, Row: row, Labels: labels.Snapshot()}
	return formatter.Render(result, func(w io.Writer) error {
		text, err := rowText(listing.Table, row, labels)
		if err != nil {
			return err
		}
		if err := writeRecord(w, rowFields(listing.Table), text); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	})
}
