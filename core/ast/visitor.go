package ast

// Visitor is implemented by each dialect renderer to turn an AST into
// dialect-specific SQL text. Every Node's Accept method calls back into
// exactly one VisitX method here.
type Visitor interface {
	VisitCreateTable(n *CreateTableNode) error
	VisitAlterTable(n *AlterTableNode) error
	VisitDropTable(n *DropTableNode) error
	VisitColumn(n *ColumnNode) error
	VisitConstraint(n *ConstraintNode) error
	VisitIndex(n *IndexNode) error
	VisitDropIndex(n *DropIndexNode) error
	VisitEnum(n *EnumNode) error
	VisitCreateType(n *CreateTypeNode) error
	VisitAlterType(n *AlterTypeNode) error
	VisitDropType(n *DropTypeNode) error
	VisitTableRebuild(n *TableRebuildNode) error
	VisitComment(n *CommentNode) error
}

// ConstraintType enumerates the kinds of table-level constraint a
// ConstraintNode can carry.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintCheck      ConstraintType = "CHECK"
)

// DefaultValue is a tagged union of a literal default ('active', 0, true)
// and a function-call default (NOW(), CURRENT_TIMESTAMP). Exactly one of
// Value or Expression is set.
type DefaultValue struct {
	Value      string
	Expression string
}

// IsExpression reports whether this default is a function call rather
// than a literal.
func (d *DefaultValue) IsExpression() bool {
	return d != nil && d.Expression != ""
}

// ForeignKeyRef describes the table/column a foreign key points at, plus
// referential actions.
type ForeignKeyRef struct {
	Name     string
	Table    string
	Column   string
	OnDelete string
	OnUpdate string
}

// AlterOperation is a single operation carried by an AlterTableNode.
// Each concrete type below renders as one clause of the surrounding
// ALTER TABLE statement (or, on dialects that cannot combine clauses,
// as its own statement).
type AlterOperation interface {
	isAlterOperation()
}

// AddColumnOperation adds a new column to an existing table.
type AddColumnOperation struct {
	Column *ColumnNode
}

func (AddColumnOperation) isAlterOperation() {}

// DropColumnOperation removes a column from an existing table.
type DropColumnOperation struct {
	Name     string
	IfExists bool
}

func (DropColumnOperation) isAlterOperation() {}

// RenameColumnOperation renames an existing column in place.
type RenameColumnOperation struct {
	OldName string
	NewName string
}

func (RenameColumnOperation) isAlterOperation() {}

// AlterColumnTypeOperation changes an existing column's data type,
// optionally carrying a USING expression for dialects that require an
// explicit cast (PostgreSQL).
type AlterColumnTypeOperation struct {
	Name     string
	NewType  string
	Using    string
	Nullable *bool
}

func (AlterColumnTypeOperation) isAlterOperation() {}

// SetColumnDefaultOperation sets or drops a column's default value.
// A nil Default means DROP DEFAULT.
type SetColumnDefaultOperation struct {
	Name    string
	Default *DefaultValue
}

func (SetColumnDefaultOperation) isAlterOperation() {}

// SetColumnNullableOperation toggles a column's NULL/NOT NULL constraint.
type SetColumnNullableOperation struct {
	Name     string
	Nullable bool
}

func (SetColumnNullableOperation) isAlterOperation() {}

// AddConstraintOperation adds a table-level constraint to an existing table.
type AddConstraintOperation struct {
	Constraint *ConstraintNode
}

func (AddConstraintOperation) isAlterOperation() {}

// DropConstraintOperation removes a table-level constraint by name.
type DropConstraintOperation struct {
	Name     string
	IfExists bool
}

func (DropConstraintOperation) isAlterOperation() {}

// RenameTableOperation renames the table itself.
type RenameTableOperation struct {
	NewName string
}

func (RenameTableOperation) isAlterOperation() {}

// TypeOperation is a single operation carried by an AlterTypeNode,
// used to evolve a PostgreSQL enum type in place.
type TypeOperation interface {
	isTypeOperation()
}

// AddEnumValueOperation appends a new value to an existing enum type.
// Before specifies an existing value the new one should be inserted
// before; an empty Before appends at the end.
type AddEnumValueOperation struct {
	Value  string
	Before string
}

func (AddEnumValueOperation) isTypeOperation() {}

// RenameEnumValueOperation renames an existing enum value in place.
type RenameEnumValueOperation struct {
	OldValue string
	NewValue string
}

func (RenameEnumValueOperation) isTypeOperation() {}

// TypeDefinition is a tagged union of the type bodies a CreateTypeNode
// can carry. Only EnumTypeDef is produced today.
type TypeDefinition interface {
	isTypeDefinition()
}

// EnumTypeDef is the body of a CREATE TYPE ... AS ENUM statement.
type EnumTypeDef struct {
	Values []string
}

func (EnumTypeDef) isTypeDefinition() {}

// NewEnumTypeDef builds an EnumTypeDef from a list of values.
func NewEnumTypeDef(values ...string) EnumTypeDef {
	return EnumTypeDef{Values: values}
}
