// Package dialect defines the per-database-system rendering capability
// set (C6): given a schema.Table, emit CREATE TABLE; given a diff atom,
// emit the corresponding ALTER; given a schema.Index, emit CREATE/DROP
// INDEX. Type rendering is delegated to each dialect's type-mapping
// table (spec.md §4.5).
//
// Grounded on ptah's migration/planner/dialects/{postgres,mysql}
// package shape for the planner-side API, and on core/renderer's
// visitor-based rendering for how a Dialect turns an *ast.Node into
// SQL text.
package dialect

import "github.com/schemaforge/schemaforge/core/schema"

// Name identifies a supported SQL dialect.
type Name string

const (
	PostgreSQL Name = "postgres"
	MySQL      Name = "mysql"
	SQLite     Name = "sqlite"
)

// Dialect is the capability set every backend implements. The
// Migration Pipeline queries Supports* before choosing a rendering
// strategy (direct ALTER vs. SQLite's table-rebuild pattern).
type Dialect interface {
	Name() Name

	// Quote wraps an identifier in the dialect's quoting style.
	Quote(identifier string) string
	// QuoteString renders a single-quoted SQL string literal, doubling
	// embedded quotes.
	QuoteString(value string) string

	// RenderColumnType maps an abstract schema.ColumnType to the
	// dialect's concrete type syntax.
	RenderColumnType(t schema.ColumnType) string

	// RenderCreateTable emits a complete CREATE TABLE statement.
	RenderCreateTable(t *schema.Table) (string, error)
	// RenderDropTable emits a DROP TABLE statement.
	RenderDropTable(tableName string, ifExists bool) string

	// RenderAddColumn emits an ALTER TABLE ... ADD COLUMN statement.
	RenderAddColumn(tableName string, c *schema.Column) (string, error)
	// RenderDropColumn emits an ALTER TABLE ... DROP COLUMN statement.
	RenderDropColumn(tableName, columnName string) string
	// RenderRenameColumn emits a column rename statement.
	RenderRenameColumn(tableName, oldName, newName string) string
	// RenderAlterColumnType emits the statement(s) needed to change an
	// existing column's type/nullability/default/auto-increment. old
	// is nil when no previous state is known (the pipeline passes nil
	// for a renamed column that also changed attributes).
	RenderAlterColumnType(tableName string, old, new *schema.Column) ([]string, error)

	// RenderCreateIndex emits a CREATE INDEX statement. tableName is
	// passed separately because schema.Index does not carry its owning
	// table's name.
	RenderCreateIndex(tableName string, i *schema.Index) string
	// RenderDropIndex emits a DROP INDEX statement.
	RenderDropIndex(tableName, indexName string) string

	// RenderAddConstraint emits an ALTER TABLE ... ADD CONSTRAINT
	// statement (or, on SQLite, an error — constraints there are
	// inline-only and the pipeline must use the rebuild path instead).
	RenderAddConstraint(tableName string, c *schema.Constraint) (string, error)
	// RenderDropConstraint emits an ALTER TABLE ... DROP CONSTRAINT
	// statement (or an error on SQLite, for the same reason).
	RenderDropConstraint(tableName string, c *schema.Constraint) (string, error)

	// RenderCreateEnum emits the statement(s) needed to declare an enum
	// type. MySQL and SQLite have no standalone enum type and return
	// an empty slice: MySQL renders the values inline wherever a column
	// uses the enum, and SQLite renders such a column as TEXT.
	RenderCreateEnum(e *schema.EnumDefinition) []string
	// RenderDropEnum emits the statement(s) needed to remove an enum
	// type (PostgreSQL only; empty elsewhere).
	RenderDropEnum(name string) []string
	// RenderAddEnumValues emits the ALTER TYPE ... ADD VALUE
	// statements for an AddOnly enum change (PostgreSQL only).
	RenderAddEnumValues(enumName string, values []string) []string

	// SupportsAlterColumnType reports whether the dialect can change a
	// column's type via ALTER TABLE without a full table rebuild.
	SupportsAlterColumnType() bool
	// SupportsAddConstraint reports whether the dialect can add a
	// table-level constraint to an existing table via ALTER TABLE.
	SupportsAddConstraint() bool
	// SupportsEnumType reports whether the dialect has a standalone,
	// named enum type (only PostgreSQL does; MySQL inlines the values on
	// the column and SQLite uses TEXT).
	SupportsEnumType() bool
}

// registry maps each Name to its dialect constructor, populated by each
// dialect subpackage's init function via Register.
var registry = map[Name]func() Dialect{}

// Register adds a dialect constructor to the registry. Called from
// each dialect subpackage's init().
func Register(name Name, constructor func() Dialect) {
	registry[name] = constructor
}

// For returns a fresh Dialect instance for the given name, or nil if
// unknown.
func For(name Name) Dialect {
	ctor, ok := registry[name]
	if !ok {
		return nil
	}
	return ctor()
}
