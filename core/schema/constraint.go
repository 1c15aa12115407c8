package schema

import "strings"

// ConstraintKind is the tag of the Constraint sum type.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "PRIMARY_KEY"
	ConstraintUnique     ConstraintKind = "UNIQUE"
	ConstraintCheck      ConstraintKind = "CHECK"
	ConstraintForeignKey ConstraintKind = "FOREIGN_KEY"
)

// ReferentialAction is the behavior applied to a FOREIGN_KEY row when
// its referenced row is deleted or updated.
type ReferentialAction string

const (
	NoAction   ReferentialAction = "NO_ACTION"
	Cascade    ReferentialAction = "CASCADE"
	SetNull    ReferentialAction = "SET_NULL"
	SetDefault ReferentialAction = "SET_DEFAULT"
	Restrict   ReferentialAction = "RESTRICT"
)

// Constraint is a tagged union over table-level constraints.
type Constraint struct {
	Kind    ConstraintKind
	Columns []string

	// CHECK
	CheckExpression string

	// FOREIGN_KEY
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferentialAction
	OnUpdate          ReferentialAction
}

func NewPrimaryKey(columns ...string) *Constraint {
	return &Constraint{Kind: ConstraintPrimaryKey, Columns: columns}
}

func NewUniqueConstraint(columns ...string) *Constraint {
	return &Constraint{Kind: ConstraintUnique, Columns: columns}
}

func NewCheckConstraint(expression string, columns ...string) *Constraint {
	return &Constraint{Kind: ConstraintCheck, Columns: columns, CheckExpression: expression}
}

func NewForeignKey(columns []string, refTable string, refColumns []string) *Constraint {
	return &Constraint{
		Kind:              ConstraintForeignKey,
		Columns:           columns,
		ReferencedTable:   refTable,
		ReferencedColumns: refColumns,
		OnDelete:          NoAction,
		OnUpdate:          NoAction,
	}
}

// StructuralKey returns a stable string identity for the constraint,
// derived from kind + columns + reference + expression rather than a
// name (constraints carry no name in this model — they are keyed by
// content, per the diff detector's "no modified constraint" rule).
func (c *Constraint) StructuralKey() string {
	var b strings.Builder
	b.WriteString(string(c.Kind))
	b.WriteByte('|')
	b.WriteString(strings.Join(c.Columns, ","))
	switch c.Kind {
	case ConstraintCheck:
		b.WriteByte('|')
		b.WriteString(c.CheckExpression)
	case ConstraintForeignKey:
		b.WriteByte('|')
		b.WriteString(c.ReferencedTable)
		b.WriteByte('|')
		b.WriteString(strings.Join(c.ReferencedColumns, ","))
		b.WriteByte('|')
		b.WriteString(string(c.OnDelete))
		b.WriteByte('|')
		b.WriteString(string(c.OnUpdate))
	}
	return b.String()
}
