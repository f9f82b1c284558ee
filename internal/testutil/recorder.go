package testutil

import (
	"strings"
	"sync"
)

// StatementRecorder collects the statements a store sends to SQLite.
//
// Pass Record to store.WithTracer. Tests then count the queries an
// operation issued, e.g. that a cache loads each table exactly once.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StatementRecorder struct {
	mu         sync.Mutex
	statements []string
}

// NewStatementRecorder creates an empty recorder.
func NewStatementRecorder() *StatementRecorder {
	return &StatementRecorder{}
}

// Record appends a statement. Its signature matches store.WithTracer.
func (r *StatementRecorder) Record(statement string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, statement)
}

// Statements returns a copy of everything recorded so far.
func (r *StatementRecorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

// Count returns how many recorded statements start with prefix.
// An empty prefix counts everything.
func (r *StatementRecorder) Count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.statements {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded statement.
//
// Used to ignore setup statements before the operation under test.
func (r *StatementRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
}
