package ast

import (
	"fmt"
)

// Node represents any SQL AST node that can be visited by a Visitor.
//
// All AST nodes implement this interface to participate in the visitor pattern.
// The Accept method allows visitors to traverse the AST and generate
// dialect-specific SQL output.
type Node interface {
	// Accept implements the visitor pattern for rendering
	Accept(visitor Visitor) error
}

// AlterTableNode represents ALTER TABLE statements with one or more operations.
//
// This node can contain multiple operations like adding columns, dropping columns,
// or modifying existing columns. Each operation is represented by a specific
// AlterOperation implementation.
type AlterTableNode struct {
	// Name is the name of the table to alter
	Name string
	// Operations contains the list of operations to perform on the table
	Operations []AlterOperation
}

// NewAlterTable creates a new ALTER TABLE node with the specified table name.
func NewAlterTable(name string) *AlterTableNode {
	return &AlterTableNode{
		Name:       name,
		Operations: make([]AlterOperation, 0),
	}
}

// AddOperation adds an operation and returns the node for chaining.
func (n *AlterTableNode) AddOperation(op AlterOperation) *AlterTableNode {
	n.Operations = append(n.Operations, op)
	return n
}

// Accept implements the Node interface for AlterTableNode.
func (n *AlterTableNode) Accept(visitor Visitor) error {
	return visitor.VisitAlterTable(n)
}

// EnumNode represents a CREATE TYPE ... AS ENUM statement (PostgreSQL-specific).
//
// Enums are primarily supported by PostgreSQL. MySQL renders the same
// definition as an inline column type; SQLite renders enum columns as
// plain TEXT (see sql/dialect).
type EnumNode struct {
	// Name is the name of the enum type
	Name string
	// Values contains the list of allowed enum values
	Values []string
}

// NewEnum creates a new enum node with the specified name and values.
func NewEnum(name string, values ...string) *EnumNode {
	return &EnumNode{
		Name:   name,
		Values: values,
	}
}

// Accept implements the Node interface for EnumNode.
func (n *EnumNode) Accept(visitor Visitor) error {
	return visitor.VisitEnum(n)
}

// CreateTableNode represents a CREATE TABLE statement with all its components.
//
// This node contains the complete definition of a table including columns,
// constraints, dialect-specific options, and optional comments. It supports
// a fluent API for easy construction.
type CreateTableNode struct {
	// Name is the name of the table to create
	Name string
	// Columns contains all column definitions for the table
	Columns []*ColumnNode
	// Constraints contains table-level constraints (PRIMARY KEY, UNIQUE, FOREIGN KEY, CHECK)
	Constraints []*ConstraintNode
	// Options contains dialect-specific table options like ENGINE for MySQL
	Options map[string]string
	// Comment is an optional table comment
	Comment string
}

// NewCreateTable creates a new CREATE TABLE node with the specified table name.
func NewCreateTable(name string) *CreateTableNode {
	return &CreateTableNode{
		Name:        name,
		Columns:     make([]*ColumnNode, 0),
		Constraints: make([]*ConstraintNode, 0),
		Options:     make(map[string]string),
	}
}

// Accept implements the Node interface for CreateTableNode.
func (n *CreateTableNode) Accept(visitor Visitor) error {
	return visitor.VisitCreateTable(n)
}

// AddColumn adds a column to the CREATE TABLE statement and returns the table node for chaining.
func (n *CreateTableNode) AddColumn(column *ColumnNode) *CreateTableNode {
	n.Columns = append(n.Columns, column)
	return n
}

// AddConstraint adds a table-level constraint and returns the table node for chaining.
func (n *CreateTableNode) AddConstraint(constraint *ConstraintNode) *CreateTableNode {
	n.Constraints = append(n.Constraints, constraint)
	return n
}

// SetOption sets a dialect-specific table option and returns the table node for chaining.
func (n *CreateTableNode) SetOption(key, value string) *CreateTableNode {
	n.Options[key] = value
	return n
}

// SetComment sets a comment for the CREATE TABLE operation.
func (n *CreateTableNode) SetComment(comment string) *CreateTableNode {
	n.Comment = comment
	return n
}

// ColumnNode represents a table column definition with all its attributes.
type ColumnNode struct {
	// Name is the column name
	Name string
	// Type is the column data type (e.g., "INTEGER", "VARCHAR(255)", "TIMESTAMP")
	Type string
	// Nullable indicates whether the column allows NULL values (default: true)
	Nullable bool
	// Primary indicates whether this column is part of the primary key
	Primary bool
	// Unique indicates whether this column has a unique constraint
	Unique bool
	// AutoInc indicates whether this column is auto-incrementing
	AutoInc bool
	// Default contains the default value specification (literal or function)
	Default *DefaultValue
	// Check contains a check constraint expression for this column
	Check string
	// Comment is an optional column comment
	Comment string
	// ForeignKey contains foreign key reference information if this column references another table
	ForeignKey *ForeignKeyRef
}

// NewColumn creates a new column node with the specified name and data type.
//
// The column is created with nullable=true by default. Use the fluent API
// methods to configure other properties.
func NewColumn(name, dataType string) *ColumnNode {
	return &ColumnNode{
		Name:     name,
		Type:     dataType,
		Nullable: true, // Default to nullable
	}
}

// Accept implements the Node interface for ColumnNode.
func (n *ColumnNode) Accept(visitor Visitor) error {
	return visitor.VisitColumn(n)
}

// SetPrimary marks the column as a primary key and returns the column for chaining.
func (n *ColumnNode) SetPrimary() *ColumnNode {
	n.Primary = true
	n.Nullable = false // Primary keys are always NOT NULL
	return n
}

// SetNotNull marks the column as NOT NULL and returns the column for chaining.
func (n *ColumnNode) SetNotNull() *ColumnNode {
	n.Nullable = false
	return n
}

// SetUnique marks the column as UNIQUE and returns the column for chaining.
func (n *ColumnNode) SetUnique() *ColumnNode {
	n.Unique = true
	return n
}

// SetAutoIncrement marks the column as auto-incrementing and returns the column for chaining.
//
// Auto-increment rendering varies by dialect: MySQL uses AUTO_INCREMENT,
// PostgreSQL rewrites the type to a serial/identity form, SQLite uses
// AUTOINCREMENT on an INTEGER PRIMARY KEY.
func (n *ColumnNode) SetAutoIncrement() *ColumnNode {
	n.AutoInc = true
	return n
}

// SetDefault sets a literal default value and returns the column for chaining.
func (n *ColumnNode) SetDefault(value string) *ColumnNode {
	n.Default = &DefaultValue{Value: value}
	return n
}

// SetDefaultExpression sets a function as the default value and returns the column for chaining.
func (n *ColumnNode) SetDefaultExpression(fn string) *ColumnNode {
	n.Default = &DefaultValue{Expression: fn}
	return n
}

// SetCheck sets a check constraint expression and returns the column for chaining.
func (n *ColumnNode) SetCheck(expression string) *ColumnNode {
	n.Check = expression
	return n
}

// SetComment sets a column comment and returns the column for chaining.
func (n *ColumnNode) SetComment(comment string) *ColumnNode {
	n.Comment = comment
	return n
}

// SetForeignKey sets a foreign key reference and returns the column for chaining.
func (n *ColumnNode) SetForeignKey(table, column, name string) *ColumnNode {
	n.ForeignKey = &ForeignKeyRef{
		Table:  table,
		Column: column,
		Name:   name,
	}
	return n
}

// ConstraintNode represents table-level constraints (PRIMARY KEY, UNIQUE, FOREIGN KEY, CHECK).
type ConstraintNode struct {
	// Type specifies the constraint type (PRIMARY KEY, UNIQUE, etc.)
	Type ConstraintType
	// Name is the constraint name (optional for some constraint types)
	Name string
	// Columns contains the list of column names involved in the constraint
	Columns []string
	// Reference contains foreign key reference information (only for FOREIGN KEY constraints)
	Reference *ForeignKeyRef
	// Expression contains the check expression (only for CHECK constraints)
	Expression string
}

// Accept implements the Node interface for ConstraintNode.
func (n *ConstraintNode) Accept(visitor Visitor) error {
	return visitor.VisitConstraint(n)
}

// IndexNode represents a CREATE INDEX statement.
type IndexNode struct {
	// Name is the index name
	Name string
	// Table is the name of the table to index
	Table string
	// Columns contains the list of column names to include in the index
	Columns []string
	// Unique indicates whether this is a unique index
	Unique bool
	// Type specifies the index type (BTREE, HASH, GIN, GIST, etc.) - database-specific
	Type string
	// Comment is an optional index comment
	Comment string

	// Condition specifies a WHERE clause for partial indexes (PostgreSQL/SQLite)
	Condition string
}

// NewIndex creates a new index node with the specified name, table, and columns.
func NewIndex(name, table string, columns ...string) *IndexNode {
	return &IndexNode{
		Name:    name,
		Table:   table,
		Columns: columns,
	}
}

// Accept implements the Node interface for IndexNode.
func (n *IndexNode) Accept(visitor Visitor) error {
	return visitor.VisitIndex(n)
}

// SetUnique marks the index as unique and returns the index for chaining.
func (n *IndexNode) SetUnique() *IndexNode {
	n.Unique = true
	return n
}

// DropIndexNode represents a DROP INDEX statement.
type DropIndexNode struct {
	// Name is the name of the index to drop
	Name string
	// Table is the name of the table (required for some databases like MySQL)
	Table string
	// IfExists indicates whether to use IF EXISTS clause
	IfExists bool
	// Comment is an optional comment for the drop operation
	Comment string
}

// NewDropIndex creates a new DROP INDEX node with the specified index name.
func NewDropIndex(name string) *DropIndexNode {
	return &DropIndexNode{
		Name:     name,
		IfExists: false,
	}
}

// SetTable sets the table name for the DROP INDEX statement.
func (n *DropIndexNode) SetTable(table string) *DropIndexNode {
	n.Table = table
	return n
}

// SetIfExists sets the IF EXISTS option for the DROP INDEX statement.
func (n *DropIndexNode) SetIfExists() *DropIndexNode {
	n.IfExists = true
	return n
}

// SetComment sets a comment for the DROP INDEX operation.
func (n *DropIndexNode) SetComment(comment string) *DropIndexNode {
	n.Comment = comment
	return n
}

// Accept implements the Node interface for DropIndexNode.
func (n *DropIndexNode) Accept(visitor Visitor) error {
	return visitor.VisitDropIndex(n)
}

// CommentNode represents SQL comments that can be included in generated scripts.
type CommentNode struct {
	// Text is the comment content
	Text string
}

// NewComment creates a new comment node with the specified text.
func NewComment(text string) *CommentNode {
	return &CommentNode{Text: text}
}

// Accept implements the Node interface for CommentNode.
func (n *CommentNode) Accept(visitor Visitor) error {
	return visitor.VisitComment(n)
}

// DropTableNode represents a DROP TABLE statement.
type DropTableNode struct {
	// Name is the name of the table to drop
	Name string
	// IfExists indicates whether to use IF EXISTS clause
	IfExists bool
	// Cascade indicates whether to use CASCADE option (PostgreSQL)
	Cascade bool
	// Comment is an optional comment for the drop operation
	Comment string
}

// NewDropTable creates a new DROP TABLE node with the specified table name.
func NewDropTable(name string) *DropTableNode {
	return &DropTableNode{
		Name:     name,
		IfExists: false,
		Cascade:  false,
	}
}

// SetIfExists sets the IF EXISTS option for the DROP TABLE statement.
func (n *DropTableNode) SetIfExists() *DropTableNode {
	n.IfExists = true
	return n
}

// SetCascade sets the CASCADE option for the DROP TABLE statement.
func (n *DropTableNode) SetCascade() *DropTableNode {
	n.Cascade = true
	return n
}

// SetComment sets a comment for the DROP TABLE operation.
func (n *DropTableNode) SetComment(comment string) *DropTableNode {
	n.Comment = comment
	return n
}

// Accept implements the Node interface for DropTableNode.
func (n *DropTableNode) Accept(visitor Visitor) error {
	return visitor.VisitDropTable(n)
}

// CreateTypeNode represents a CREATE TYPE statement with various type definitions.
//
// Only the enum TypeDefinition is currently produced by the planner;
// the field exists as an open hook the way ptah's left it for composite
// and domain types it never finished wiring either.
type CreateTypeNode struct {
	// Name is the name of the type to create
	Name string
	// TypeDef contains the type definition (currently always an enum)
	TypeDef TypeDefinition
	// Comment is an optional comment for the type creation
	Comment string
}

// NewCreateType creates a new CREATE TYPE node with the specified name and type definition.
func NewCreateType(name string, typeDef TypeDefinition) *CreateTypeNode {
	return &CreateTypeNode{
		Name:    name,
		TypeDef: typeDef,
	}
}

// SetComment sets a comment for the CREATE TYPE operation.
func (n *CreateTypeNode) SetComment(comment string) *CreateTypeNode {
	n.Comment = comment
	return n
}

// Accept implements the Node interface for CreateTypeNode.
func (n *CreateTypeNode) Accept(visitor Visitor) error {
	return visitor.VisitCreateType(n)
}

// AlterTypeNode represents an ALTER TYPE statement with one or more operations.
type AlterTypeNode struct {
	// Name is the name of the type to alter
	Name string
	// Operations contains the list of operations to perform on the type
	Operations []TypeOperation
}

// NewAlterType creates a new ALTER TYPE node with the specified type name.
func NewAlterType(name string) *AlterTypeNode {
	return &AlterTypeNode{
		Name:       name,
		Operations: make([]TypeOperation, 0),
	}
}

// AddOperation adds a type operation and returns the alter type node for chaining.
func (n *AlterTypeNode) AddOperation(operation TypeOperation) *AlterTypeNode {
	n.Operations = append(n.Operations, operation)
	return n
}

// Accept implements the Node interface for AlterTypeNode.
func (n *AlterTypeNode) Accept(visitor Visitor) error {
	return visitor.VisitAlterType(n)
}

// DropTypeNode represents a DROP TYPE statement (PostgreSQL-specific).
type DropTypeNode struct {
	// Name is the name of the type to drop
	Name string
	// IfExists indicates whether to use IF EXISTS clause
	IfExists bool
	// Cascade indicates whether to use CASCADE option
	Cascade bool
	// Comment is an optional comment for the drop operation
	Comment string
}

// NewDropType creates a new DROP TYPE node with the specified type name.
func NewDropType(name string) *DropTypeNode {
	return &DropTypeNode{
		Name:     name,
		IfExists: false,
		Cascade:  false,
	}
}

// SetIfExists sets the IF EXISTS option for the DROP TYPE statement.
func (n *DropTypeNode) SetIfExists() *DropTypeNode {
	n.IfExists = true
	return n
}

// SetCascade sets the CASCADE option for the DROP TYPE statement.
func (n *DropTypeNode) SetCascade() *DropTypeNode {
	n.Cascade = true
	return n
}

// SetComment sets a comment for the DROP TYPE operation.
func (n *DropTypeNode) SetComment(comment string) *DropTypeNode {
	n.Comment = comment
	return n
}

// Accept implements the Node interface for DropTypeNode.
func (n *DropTypeNode) Accept(visitor Visitor) error {
	return visitor.VisitDropType(n)
}

// TableRebuildNode represents SQLite's create-copy-drop-rename sequence
// for changes SQLite's ALTER TABLE cannot express directly (column type
// changes, dropping/renaming a column pre-3.25, adding or removing a
// constraint). It carries the new table definition and the column
// mapping needed to copy rows from the old table into it.
type TableRebuildNode struct {
	// OldName is the existing table being rebuilt
	OldName string
	// NewTable is the full definition of the replacement table, created
	// under a temporary name before the swap
	NewTable *CreateTableNode
	// ColumnMapping maps new-table column name to old-table column name
	// (or expression) used to populate it during the copy step. A column
	// absent from the map is assumed to share its name in both tables.
	ColumnMapping map[string]string
	// Indexes carries the rebuilt table's indexes, recreated once the
	// swap has landed on the final table name.
	Indexes []*IndexNode
	// Comment documents why the rebuild was necessary
	Comment string
}

// NewTableRebuild creates a new table-rebuild node for the given table.
func NewTableRebuild(oldName string, newTable *CreateTableNode) *TableRebuildNode {
	return &TableRebuildNode{
		OldName:       oldName,
		NewTable:      newTable,
		ColumnMapping: make(map[string]string),
	}
}

// MapColumn records that the new table's column is populated from the
// old table's column (or expression) of a different name.
func (n *TableRebuildNode) MapColumn(newColumn, fromExpression string) *TableRebuildNode {
	n.ColumnMapping[newColumn] = fromExpression
	return n
}

// AddIndex records an index to recreate once the rebuild has swapped
// the new table into place under the final name.
func (n *TableRebuildNode) AddIndex(idx *IndexNode) *TableRebuildNode {
	n.Indexes = append(n.Indexes, idx)
	return n
}

// SetComment sets a comment for the rebuild operation.
func (n *TableRebuildNode) SetComment(comment string) *TableRebuildNode {
	n.Comment = comment
	return n
}

// Accept implements the Node interface for TableRebuildNode.
func (n *TableRebuildNode) Accept(visitor Visitor) error {
	return visitor.VisitTableRebuild(n)
}

// StatementList represents a collection of SQL statements that should be executed together.
//
// This is typically used to represent a complete migration script that
// contains multiple DDL statements. The visitor processes each statement
// in order.
type StatementList struct {
	// Statements contains the ordered list of SQL statements
	Statements []Node
}

// Accept implements the Node interface for StatementList.
//
// This method visits each statement in the list in order. If any statement
// fails to be visited, the process stops and returns the error.
func (sl *StatementList) Accept(visitor Visitor) error {
	for _, stmt := range sl.Statements {
		if err := stmt.Accept(visitor); err != nil {
			return fmt.Errorf("error visiting statement: %w", err)
		}
	}
	return nil
}
