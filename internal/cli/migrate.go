package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Down int
}

// MigrateResult is the JSON payload of the migrate command.
type MigrateResult struct {
	Version    int      `json:"version"`
	Latest     int      `json:"latest"`
	Applied    []string `json:"applied"`
	RolledBack []string `json:"rolled_back,omitempty"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Apply every pending schema migration and report the schema version.

Every command migrates on open; this one only reports. With --down N the
migrations above version N are reversed afterwards. The next command that
opens the database applies them again, so --down is meant for handing the
file to an older build.

Examples:
  shelby migrate
  shelby migrate --down 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Down, "down", 0, "reverse migrations down to this version")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)
	migrations := model.Migrations()

	if cmd.Flags().Changed("down") && (opts.Down < 0 || opts.Down > len(migrations)) {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("--down must be between 0 and %d", len(migrations)), nil)
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	result := MigrateResult{Latest: len(migrations)}
	if cmd.Flags().Changed("down") {
		if err := st.MigrateDown(ctx, opts.Down); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to reverse migrations", err)
		}
		for _, m := range migrations[opts.Down:] {
			result.RolledBack = append(result.RolledBack, m.Name)
		}
		slog.Info("migrations reversed", "target", opts.Down)
	}

	version, err := st.Version(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read schema version", err)
	}
	result.Version = version
	result.Applied = []string{}
	for _, m := range migrations[:version] {
		result.Applied = append(result.Applied, m.Name)
	}

	return formatter.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Schema version %d of %d (%s)\n", result.Version, result.Latest, strings.Join(result.Applied, ", "))
		return err
	})
}
