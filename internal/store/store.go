package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns the live connection to the SQLite database.
//
// The pool is limited to a single connection: every statement issued through
// a Store is serialized, which is the single-writer contract the rest of the
// persistence layer relies on. It also keeps ":memory:" databases alive on one
// connection for the lifetime of the Store.
type Store struct {
	db         *sql.DB
	logger     *slog.Logger
	migrations []Migration
	policy     DecodePolicy
	tracer     func(statement string)
}

// Option configures a Store at open time.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMigrations sets the ordered migration bundles applied by Open.
func WithMigrations(migrations []Migration) Option {
	return func(s *Store) {
		s.migrations = migrations
	}
}

// WithDecodePolicy selects how QueryAll treats rows that fail to decode.
func WithDecodePolicy(policy DecodePolicy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

// WithTracer registers a callback invoked with every statement sent to the
// database, before it is executed.
func WithTracer(tracer func(statement string)) Option {
	return func(s *Store) {
		s.tracer = tracer
	}
}

// Open creates or opens a SQLite database at the given path.
//
// After the connection is established the following steps run in order:
//   - pending migrations (tracked through PRAGMA user_version)
//   - journal_mode = WAL
//   - foreign_keys = ON
//
// A failure at any step closes the connection and fails the whole open.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s, err := connect(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	if err := s.applyPragmas(ctx); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return s, nil
}

// OpenInMemory opens a private in-memory database and prepares it like Open.
func OpenInMemory(ctx context.Context, opts ...Option) (*Store, error) {
	return Open(ctx, ":memory:", opts...)
}

// OpenPlain opens an in-memory database without running any migrations.
// Foreign keys are still enforced. Tables are expected to be created through
// CreateTable; this is mostly useful in tests.
func OpenPlain(ctx context.Context, opts ...Option) (*Store, error) {
	s, err := connect(ctx, ":memory:", opts)
	if err != nil {
		return nil, err
	}

	if err := s.applyPragmas(ctx); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return s, nil
}

func connect(ctx context.Context, path string, opts []Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists only as long as its connection does.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy: SkipInvalidRows,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer the typed helpers of this package.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Logger returns the logger the store was opened with.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Result describes the outcome of a statement executed through Exec.
type Result struct {
	RowsAffected int64
	// LastInsertID is the rowid assigned by the most recent successful insert.
	LastInsertID int64
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, statement string, args ...any) (Result, error) {
	s.trace(statement)

	res, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return Result{}, classify("exec", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, classify("rows affected", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return Result{}, classify("last insert id", err)
	}

	return Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

func (s *Store) trace(statement string) {
	s.logger.Debug("executing statement", "sql", statement)
	if s.tracer != nil {
		s.tracer(statement)
	}
}

// applyPragmas enables write-ahead logging and foreign key enforcement.
// journal_mode reports "memory" for in-memory databases, which is not an error.
func (s *Store) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
