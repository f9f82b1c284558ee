package store

import (
	"context"
	"fmt"
)

// Dependency is the set of tables that must exist before a table is created.
//
// A dependency set is one of:
//   - NoDependencies (the unit set)
//   - a single *Table, which brings its own dependencies along
//   - Both(a, b) or All(a, b, ...), a composite of other sets
//
// Tables are immutable values assigned to package-level variables, so a
// cyclic declaration is rejected by the compiler as an initialization cycle.
// The resolver itself does not look for cycles.
type Dependency interface {
	// walk visits every table in the set, ancestors first. Tables already
	// present in seen are skipped.
	walk(seen map[*Table]bool, visit func(*Table) error) error
}

type noDependencies struct{}

func (noDependencies) walk(map[*Table]bool, func(*Table) error) error { return nil }

// NoDependencies is the empty dependency set.
var NoDependencies Dependency = noDependencies{}

type composite []Dependency

func (c composite) walk(seen map[*Table]bool, visit func(*Table) error) error {
	for _, dep := range c {
		if dep == nil {
			continue
		}
		if err := dep.walk(seen, visit); err != nil {
			return err
		}
	}
	return nil
}

// Both combines two dependency sets. The left set is resolved first.
func Both(left, right Dependency) Dependency {
	return composite{left, right}
}

// All combines any number of dependency sets, resolved in argument order.
func All(deps ...Dependency) Dependency {
	return composite(deps)
}

// walk resolves the table's own dependencies, then visits the table.
func (t *Table) walk(seen map[*Table]bool, visit func(*Table) error) error {
	if seen[t] {
		return nil
	}
	if err := t.spec.DependsOn.walk(seen, visit); err != nil {
		return err
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	return visit(t)
}

// Tables returns every table of a dependency set in creation order:
// each table appears once, after all of its ancestors.
func Tables(deps ...Dependency) []*Table {
	var tables []*Table
	_ = composite(deps).walk(make(map[*Table]bool), func(t *Table) error {
		tables = append(tables, t)
		return nil
	})
	return tables
}

// TablesAfter is Tables without the tables of an already created set.
// Later migration bundles use it to create only their own tables.
func TablesAfter(created Dependency, deps ...Dependency) []*Table {
	seen := make(map[*Table]bool)
	_ = created.walk(seen, func(*Table) error { return nil })

	var tables []*Table
	_ = composite(deps).walk(seen, func(t *Table) error {
		tables = append(tables, t)
		return nil
	})
	return tables
}

// CreateTable creates the entity's table and, before it, every table in its
// transitive dependency set. Each table is created at most once per call, with
// CREATE TABLE IF NOT EXISTS, so repeating the call is a no-op.
func CreateTable(ctx context.Context, s *Store, entity Entity) error {
	return CreateTables(ctx, s, entity.Table())
}

// CreateTables creates the given dependency sets in a dependency-safe order.
func CreateTables(ctx context.Context, s *Store, deps ...Dependency) error {
	for _, t := range Tables(deps...) {
		if _, err := s.Exec(ctx, t.CreateStatement()); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name(), err)
		}
	}
	return nil
}

// CreateScript joins the create statements of the given sets, in creation
// order, into one script suitable for a migration bundle.
func CreateScript(deps ...Dependency) string {
	return createScript(Tables(deps...))
}

// CreateScriptAfter is CreateScript restricted to TablesAfter.
func CreateScriptAfter(created Dependency, deps ...Dependency) string {
	return createScript(TablesAfter(created, deps...))
}

func createScript(tables []*Table) string {
	var script string
	for _, t := range tables {
		script += t.CreateStatement() + ";\n"
	}
	return script
}

// DropScript returns the statements dropping the given tables. The tables
// are dropped in reverse creation order, so referencing tables go first.
func DropScript(tables ...*Table) string {
	var script string
	for i := len(tables) - 1; i >= 0; i-- {
		script += tables[i].DropStatement() + ";\n"
	}
	return script
}
