// Package schema is the typed in-memory representation of a desired
// relational schema: tables, columns, indexes, constraints, and enum
// types. Values are built by the schemafile loader from YAML and are
// treated as immutable once constructed — nothing in this module
// mutates a Schema after NewSchema returns it to the caller.
package schema

import "sort"

// Schema is a named version of a relational schema: a set of tables
// keyed by name and a set of enum type definitions keyed by name.
type Schema struct {
	Version              string
	EnumRecreateAllowed  bool
	Tables               map[string]*Table
	Enums                map[string]*EnumDefinition
}

// NewSchema creates an empty Schema tagged with the given version.
func NewSchema(version string) *Schema {
	return &Schema{
		Version: version,
		Tables:  make(map[string]*Table),
		Enums:   make(map[string]*EnumDefinition),
	}
}

// AddTable registers a table in the schema, keyed by its name.
func (s *Schema) AddTable(t *Table) {
	s.Tables[t.Name] = t
}

// AddEnum registers an enum type in the schema, keyed by its name.
func (s *Schema) AddEnum(e *EnumDefinition) {
	s.Enums[e.Name] = e
}

// TableNames returns the schema's table names sorted lexicographically,
// the iteration order every component in this engine uses to keep
// generated SQL reproducible across runs.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumNames returns the schema's enum names sorted lexicographically.
func (s *Schema) EnumNames() []string {
	names := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is a named collection of columns, indexes, and constraints.
// Column order is semantically significant: it determines both the
// rendered column order in CREATE TABLE and how a SQLite table rebuild
// maps old rows into the new table.
type Table struct {
	Name        string
	Columns     []*Column
	Indexes     []*Index
	Constraints []*Constraint
	RenamedFrom string
}

// NewTable creates an empty table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column to the table and returns the table for chaining.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddIndex appends an index to the table and returns the table for chaining.
func (t *Table) AddIndex(i *Index) *Table {
	t.Indexes = append(t.Indexes, i)
	return t
}

// AddConstraint appends a constraint to the table and returns the table for chaining.
func (t *Table) AddConstraint(c *Constraint) *Table {
	t.Constraints = append(t.Constraints, c)
	return t
}

// Column finds a column by name, or returns nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the table's PRIMARY_KEY constraint, or nil if it
// has none. A Schema has at most one per table.
func (t *Table) PrimaryKey() *Constraint {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

// Column is a single field in a Table.
type Column struct {
	Name          string
	Type          ColumnType
	Nullable      bool
	DefaultValue  string
	HasDefault    bool
	AutoIncrement bool
	RenamedFrom   string
}

// NewColumn creates a column with the given name and type. Columns are
// nullable by default, matching the YAML schema's default.
func NewColumn(name string, t ColumnType) *Column {
	return &Column{Name: name, Type: t, Nullable: true}
}

// Equal reports whether two columns have identical attributes,
// ignoring RenamedFrom (a rename pairs two differently-named columns
// by construction, so it is compared separately by the diff detector).
func (c *Column) Equal(other *Column) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name &&
		c.Type.Equal(other.Type) &&
		c.Nullable == other.Nullable &&
		c.DefaultValue == other.DefaultValue &&
		c.HasDefault == other.HasDefault &&
		c.AutoIncrement == other.AutoIncrement
}

// Index is a named, ordered list of columns, optionally unique.
type Index struct {
	Name      string
	Columns   []string
	Unique    bool
	Condition string
}

// NewIndex creates an index with the given name and columns.
func NewIndex(name string, unique bool, columns ...string) *Index {
	return &Index{Name: name, Columns: columns, Unique: unique}
}

// EnumDefinition is a named, ordered list of allowed string values.
// Order is significant: it encodes ordinality on dialects that support
// ordered enum comparison (PostgreSQL).
type EnumDefinition struct {
	Name   string
	Values []string
}

// IsSupersequence reports whether values is old with zero or more
// elements appended, preserving order — the condition that makes an
// enum change an AddOnly widening rather than a Recreate.
func IsSupersequence(old, new []string) bool {
	if len(new) < len(old) {
		return false
	}
	for i, v := range old {
		if new[i] != v {
			return false
		}
	}
	return true
}
