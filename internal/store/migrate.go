package store

import (
	"context"
	"fmt"
)

// Migration is one schema bundle: a forward script and the script that
// reverses it. Bundles are applied in slice order; bundle i (0-based) moves
// the schema to version i+1.
type Migration struct {
	Name string
	Up   string
	Down string
}

// Version returns the schema version recorded in PRAGMA user_version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// Migrate applies every bundle that has not been applied yet.
// Bundles already applied are skipped, so calling Migrate repeatedly is safe.
func (s *Store) Migrate(ctx context.Context) error {
	version, err := s.Version(ctx)
	if err != nil {
		return err
	}

	for i := version; i < len(s.migrations); i++ {
		m := s.migrations[i]
		if err := s.applyMigration(ctx, m.Up, i+1); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", i+1, m.Name, err)
		}
		s.logger.Info("migration applied", "version", i+1, "name", m.Name)
	}

	return nil
}

// MigrateDown reverses bundles until the schema is at the target version.
func (s *Store) MigrateDown(ctx context.Context, target int) error {
	if target < 0 {
		return fmt.Errorf("migrate down: invalid target version %d", target)
	}

	version, err := s.Version(ctx)
	if err != nil {
		return err
	}
	if version > len(s.migrations) {
		return fmt.Errorf("migrate down: database version %d is newer than the %d known migrations", version, len(s.migrations))
	}

	for i := version; i > target; i-- {
		m := s.migrations[i-1]
		if err := s.applyMigration(ctx, m.Down, i-1); err != nil {
			return fmt.Errorf("migrate down to v%d (%s): %w", i-1, m.Name, err)
		}
		s.logger.Info("migration reverted", "version", i-1, "name", m.Name)
	}

	return nil
}

// applyMigration runs one script and records the resulting version in the
// same transaction.
func (s *Store) applyMigration(ctx context.Context, script string, version int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if script != "" {
		s.trace(script)
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("execute script: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
