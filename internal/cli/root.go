package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/config"
	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured database path

	cfg          *config.Config
	storeOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shelby CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shelby",
		Short: "shelby - a document and bookkeeping archive",
		Long:  "Inspect and maintain a shelby archive: persons, groups, scanned documents and their bookings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := opts.Config()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./"+config.DefaultPath+" when present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewBlobCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))

	return cmd
}

// Config loads the configuration once and applies the --db override.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	o.cfg = cfg
	return cfg, nil
}

// openStore opens the configured database, applying pending migrations.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	opts := append([]store.Option{
		store.WithLogger(slog.Default()),
		store.WithMigrations(model.Migrations()),
		store.WithDecodePolicy(cfg.DecodePolicy()),
	}, o.storeOptions...)

	slog.Debug("opening database", "path", cfg.Database.Path)
	s, err := store.Open(ctx, cfg.Database.Path, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return s, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
