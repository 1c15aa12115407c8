package ast

// NewPrimaryKeyConstraint creates a table-level primary key constraint.
//
// This function creates a primary key constraint that spans one or more columns.
// For single-column primary keys, you can also use the SetPrimary() method on
// the column itself.
//
// Example:
//
//	// Single column primary key
//	pk := NewPrimaryKeyConstraint("id")
//	// Composite primary key
//	pk := NewPrimaryKeyConstraint("user_id", "role_id")
func NewPrimaryKeyConstraint(columns ...string) *ConstraintNode {
	return &ConstraintNode{
		Type:    ConstraintPrimaryKey,
		Columns: columns,
	}
}

// NewUniqueConstraint creates a table-level unique constraint with a name.
//
// Example:
//
//	unique := NewUniqueConstraint("uk_users_email", "email")
//	unique := NewUniqueConstraint("uk_users_name_company", "name", "company_id")
func NewUniqueConstraint(name string, columns ...string) *ConstraintNode {
	return &ConstraintNode{
		Type:    ConstraintUnique,
		Name:    name,
		Columns: columns,
	}
}

// NewForeignKeyConstraint creates a table-level foreign key constraint.
//
// Example:
//
//	ref := &ForeignKeyRef{Table: "users", Column: "id", OnDelete: "CASCADE"}
//	fk := NewForeignKeyConstraint("fk_orders_user", []string{"user_id"}, ref)
func NewForeignKeyConstraint(name string, columns []string, ref *ForeignKeyRef) *ConstraintNode {
	return &ConstraintNode{
		Type:      ConstraintForeignKey,
		Name:      name,
		Columns:   columns,
		Reference: ref,
	}
}

// NewCheckConstraint creates a table-level CHECK constraint.
//
// Example:
//
//	chk := NewCheckConstraint("chk_orders_total_positive", "total > 0")
func NewCheckConstraint(name, expression string) *ConstraintNode {
	return &ConstraintNode{
		Type:       ConstraintCheck,
		Name:       name,
		Expression: expression,
	}
}
