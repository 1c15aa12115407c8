package schemafile

import (
	"fmt"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/internal/ptr"
)

// toSchema converts a decoded fileDTO into a *schema.Schema, building
// a PRIMARY_KEY constraint from the table-level primary_key field
// (§6: "becomes a PRIMARY_KEY constraint" — it never appears under
// constraints in the file format itself).
func (f fileDTO) toSchema() (*schema.Schema, error) {
	s := schema.NewSchema(f.Version)
	s.EnumRecreateAllowed = f.EnumRecreateAllowed

	for name, e := range f.Enums {
		s.AddEnum(&schema.EnumDefinition{Name: firstNonEmpty(e.Name, name), Values: e.Values})
	}

	for name, t := range f.Tables {
		table, err := t.toTable(name)
		if err != nil {
			return nil, err
		}
		s.AddTable(table)
	}

	return s, nil
}

func (t tableDTO) toTable(name string) (*schema.Table, error) {
	table := schema.NewTable(name)
	table.RenamedFrom = t.RenamedFrom

	for _, c := range t.Columns {
		col := schema.NewColumn(c.Name, c.Type.toColumnType())
		col.Nullable = c.Nullable
		col.RenamedFrom = c.RenamedFrom
		if c.DefaultValue != nil {
			col.HasDefault = true
			col.DefaultValue = *c.DefaultValue
		}
		col.AutoIncrement = ptr.Deref(c.AutoIncrement, false)
		table.AddColumn(col)
	}

	if len(t.PrimaryKey) > 0 {
		table.AddConstraint(schema.NewPrimaryKey(t.PrimaryKey...))
	}

	for _, i := range t.Indexes {
		table.AddIndex(schema.NewIndex(i.Name, i.Unique, i.Columns...))
	}

	for _, c := range t.Constraints {
		constraint, err := c.toConstraint()
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		table.AddConstraint(constraint)
	}

	return table, nil
}

func (c constraintDTO) toConstraint() (*schema.Constraint, error) {
	switch c.Type {
	case "PRIMARY_KEY":
		return nil, fmt.Errorf("PRIMARY_KEY must not appear under constraints; use the table's primary_key field")
	case "UNIQUE":
		return schema.NewUniqueConstraint(c.Columns...), nil
	case "CHECK":
		return schema.NewCheckConstraint(c.CheckExpression, c.Columns...), nil
	case "FOREIGN_KEY":
		fk := schema.NewForeignKey(c.Columns, c.ReferencedTable, c.ReferencedColumns)
		if c.OnDelete != "" {
			fk.OnDelete = schema.ReferentialAction(c.OnDelete)
		}
		if c.OnUpdate != "" {
			fk.OnUpdate = schema.ReferentialAction(c.OnUpdate)
		}
		return fk, nil
	default:
		return nil, fmt.Errorf("unknown constraint type %q", c.Type)
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
