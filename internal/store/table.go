package store

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the logical type of a column. It determines the SQL type
// used in the create statement and whether the column may be sorted on.
type ColumnType int

const (
	TypeBool ColumnType = iota
	TypeInteger
	TypeText
	TypeDate
	TypeBlob
	TypeMoney
	TypeForeignKey
)

// SQL returns the SQLite type name of the column type.
func (t ColumnType) SQL() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeInteger, TypeMoney, TypeForeignKey:
		return "INTEGER"
	case TypeText:
		return "TEXT"
	case TypeDate:
		return "DATETIME"
	default:
		return "BLOB"
	}
}

// sortable reports whether ordering on values of this type is meaningful.
func (t ColumnType) sortable() bool {
	switch t {
	case TypeInteger, TypeDate, TypeMoney, TypeForeignKey:
		return true
	default:
		return false
	}
}

// Column describes one stored field of an entity.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	// Streamed blob columns are written on insert but never selected;
	// their content is read through Store.OpenBlob.
	Streamed bool
	// References is the target table of a foreign key column.
	References *Table
}

// Bool declares a non-null boolean column.
func Bool(name string) Column { return Column{Name: name, Type: TypeBool} }

// Integer declares a non-null 32-bit integer column.
func Integer(name string) Column { return Column{Name: name, Type: TypeInteger} }

// Text declares a non-null text column.
func Text(name string) Column { return Column{Name: name, Type: TypeText} }

// Date declares a non-null calendar date column.
func Date(name string) Column { return Column{Name: name, Type: TypeDate} }

// Blob declares a non-null binary column.
func Blob(name string) Column { return Column{Name: name, Type: TypeBlob} }

// Money declares a non-null fixed-point amount column stored in cents.
func Money(name string) Column { return Column{Name: name, Type: TypeMoney} }

// ForeignKey declares a non-null column referencing the id of another table.
func ForeignKey(name string, references *Table) Column {
	return Column{Name: name, Type: TypeForeignKey, References: references}
}

// Null returns a nullable copy of the column.
func (c Column) Null() Column {
	c.Nullable = true
	return c
}

// Stream returns a copy of the column excluded from select statements.
func (c Column) Stream() Column {
	c.Streamed = true
	return c
}

// Sortable reports whether the column may appear in an ORDER BY clause.
// Nullable columns are never sortable.
func (c Column) Sortable() bool {
	return !c.Nullable && !c.Streamed && c.Type.sortable()
}

// Definition renders the column for a create statement.
func (c Column) Definition() string {
	if c.Nullable {
		return c.Name + " " + c.Type.SQL()
	}
	return c.Name + " " + c.Type.SQL() + " NOT NULL"
}

// TableSpec declares a table. It is turned into a *Table by NewTable.
type TableSpec struct {
	// Name is the table name. It must be a constant, never user input.
	Name string

	// DependsOn lists the tables that must exist before this one.
	DependsOn Dependency

	// Columns in declared order, excluding the id column.
	Columns []Column

	// PrimaryKey, when set, makes this an association table keyed by the
	// named columns instead of an auto-assigned id.
	PrimaryKey []string

	// Constraints is appended verbatim to the create statement.
	Constraints string

	// SortBy overrides the derived whitelist of sortable columns.
	SortBy []string
}

// Table is the immutable, validated description of an entity's storage.
// All statements are generated once, when the table is constructed.
type Table struct {
	spec TableSpec

	createStatement    string
	dropStatement      string
	insertStatement    string
	selectAllStatement string
	selectStatement    string
	countStatement     string
	sortable           []string
}

// NewTable builds the statements for a table declaration.
func NewTable(spec TableSpec) *Table {
	if spec.DependsOn == nil {
		spec.DependsOn = NoDependencies
	}
	t := &Table{spec: spec}
	t.build()
	return t
}

func (t *Table) build() {
	var defs []string
	if t.Indexed() {
		defs = append(defs, "id INTEGER PRIMARY KEY")
	}
	var names, placeholders, selected []string
	if t.Indexed() {
		selected = append(selected, "id")
	}
	for _, c := range t.spec.Columns {
		defs = append(defs, c.Definition())
		names = append(names, c.Name)
		placeholders = append(placeholders, "?")
		if !c.Streamed {
			selected = append(selected, c.Name)
		}
	}
	if !t.Indexed() {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(t.spec.PrimaryKey, ", ")+")")
	}
	for _, c := range t.spec.Columns {
		if c.Type == TypeForeignKey && c.References != nil {
			defs = append(defs, fmt.Sprintf("FOREIGN KEY(%s) REFERENCES %s(id)", c.Name, c.References.Name()))
		}
	}
	if t.spec.Constraints != "" {
		defs = append(defs, t.spec.Constraints)
	}

	name := t.spec.Name
	t.createStatement = "CREATE TABLE IF NOT EXISTS " + name + " (" + strings.Join(defs, ", ") + ")"
	t.dropStatement = "DROP TABLE IF EXISTS " + name
	t.insertStatement = "INSERT INTO " + name + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	t.selectAllStatement = "SELECT " + strings.Join(selected, ", ") + " FROM " + name
	t.countStatement = "SELECT COUNT(*) FROM " + name
	if t.Indexed() {
		t.selectStatement = t.selectAllStatement + " WHERE id = ?"
	}

	if len(t.spec.SortBy) > 0 {
		t.sortable = append([]string(nil), t.spec.SortBy...)
	} else if t.Indexed() {
		t.sortable = []string{"id"}
		for _, c := range t.spec.Columns {
			if c.Sortable() {
				t.sortable = append(t.sortable, c.Name)
			}
		}
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.spec.Name }

// Columns returns a copy of the declared columns (without the id column).
func (t *Table) Columns() []Column { return append([]Column(nil), t.spec.Columns...) }

// Column looks up a declared column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.spec.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DependsOn returns the declared dependency set.
func (t *Table) DependsOn() Dependency { return t.spec.DependsOn }

// Indexed reports whether the table has a single auto-assigned id column.
// Association tables are not indexed.
func (t *Table) Indexed() bool { return len(t.spec.PrimaryKey) == 0 }

// CreateStatement returns the CREATE TABLE IF NOT EXISTS statement.
func (t *Table) CreateStatement() string { return t.createStatement }

// DropStatement returns the DROP TABLE IF EXISTS statement.
func (t *Table) DropStatement() string { return t.dropStatement }

// InsertStatement returns the INSERT statement with one placeholder per
// declared column, in declared order.
func (t *Table) InsertStatement() string { return t.insertStatement }

// SelectAllStatement returns the SELECT statement for every row. Indexed
// tables select the id first. Streamed columns are left out.
func (t *Table) SelectAllStatement() string { return t.selectAllStatement }

// SelectStatement returns the SELECT statement for one id.
// It is empty for association tables.
func (t *Table) SelectStatement() string { return t.selectStatement }

// CountStatement returns the SELECT COUNT(*) statement.
func (t *Table) CountStatement() string { return t.countStatement }

// SortableColumns returns the whitelist of columns a listing may be ordered
// by. The returned slice must not be modified.
func (t *Table) SortableColumns() []string { return t.sortable }

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the declaration for consistency: identifiers are plain
// names, columns are unique, every foreign key target is part of the
// transitive dependency set, and sort and key columns exist.
func (t *Table) Validate() error {
	if !identifierPattern.MatchString(t.spec.Name) {
		return fmt.Errorf("table %q: invalid table name", t.spec.Name)
	}
	if len(t.spec.Columns) == 0 {
		return fmt.Errorf("table %s: no columns declared", t.spec.Name)
	}

	ancestors := make(map[*Table]bool)
	_ = t.spec.DependsOn.walk(make(map[*Table]bool), func(dep *Table) error {
		ancestors[dep] = true
		return nil
	})

	seen := map[string]bool{"id": t.Indexed()}
	for _, c := range t.spec.Columns {
		if !identifierPattern.MatchString(c.Name) {
			return fmt.Errorf("table %s: invalid column name %q", t.spec.Name, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.spec.Name, c.Name)
		}
		seen[c.Name] = true

		if c.Streamed && c.Type != TypeBlob {
			return fmt.Errorf("table %s: column %s is streamed but not a blob", t.spec.Name, c.Name)
		}
		if c.Type == TypeForeignKey {
			if c.References == nil {
				return fmt.Errorf("table %s: foreign key %s has no target", t.spec.Name, c.Name)
			}
			if !ancestors[c.References] {
				return fmt.Errorf("table %s: foreign key %s references %s, which is not a dependency",
					t.spec.Name, c.Name, c.References.Name())
			}
		}
	}

	for _, name := range t.spec.PrimaryKey {
		if !seen[name] {
			return fmt.Errorf("table %s: primary key column %s not declared", t.spec.Name, name)
		}
	}
	for _, name := range t.sortable {
		if !seen[name] {
			return fmt.Errorf("table %s: sortable column %s not declared", t.spec.Name, name)
		}
	}

	return nil
}
