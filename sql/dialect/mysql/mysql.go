// Package mysql implements the dialect.Dialect capability set for
// MySQL.
//
// Grounded on ptah's core/renderer/dialects/mysql package boundary
// (one Dialect per database system, dispatching through a Visitor) —
// ptah's own renderer body delegated entirely to an internal
// mysqllike package that was not present in the retrieved pack, so
// the visitor here is original, built directly against core/ast.
package mysql

import (
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/core/ast"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect"
	"github.com/schemaforge/schemaforge/sql/dialect/internal/sqlwriter"
)

func init() {
	dialect.Register(dialect.MySQL, func() dialect.Dialect { return New() })
}

// Dialect renders MySQL DDL.
type Dialect struct{}

// New creates a MySQL dialect backend.
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Name() dialect.Name { return dialect.MySQL }

func (d *Dialect) Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (d *Dialect) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d *Dialect) SupportsAlterColumnType() bool { return true }
func (d *Dialect) SupportsAddConstraint() bool    { return true }
func (d *Dialect) SupportsEnumType() bool         { return false }

func (d *Dialect) RenderColumnType(t schema.ColumnType) string {
	switch t.Kind {
	case schema.KindInteger:
		if t.HasPrecision && t.Precision >= 8 {
			return "BIGINT"
		}
		return "INT"
	case schema.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case schema.KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Length)
	case schema.KindText:
		return "TEXT"
	case schema.KindBoolean:
		return "TINYINT(1)"
	case schema.KindDate:
		return "DATE"
	case schema.KindTime:
		return "TIME"
	case schema.KindTimestamp:
		return "DATETIME"
	case schema.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.DecimalPrecision, t.DecimalScale)
	case schema.KindFloat:
		return "FLOAT"
	case schema.KindDouble:
		return "DOUBLE"
	case schema.KindBlob:
		return "BLOB"
	case schema.KindUUID:
		return "CHAR(36)"
	case schema.KindJSON, schema.KindJSONB:
		return "JSON"
	case schema.KindEnum:
		// MySQL has no standalone enum type: render inline. The enum's
		// values are looked up by the caller (buildColumnNode) since
		// RenderColumnType only has the column's abstract type, not the
		// schema's enum table — see renderEnumInline.
		return "ENUM"
	case schema.KindDialectSpecific:
		return t.DialectKind
	default:
		return "TEXT"
	}
}

// renderEnumInline renders a MySQL inline ENUM(...) column type from the
// enum's declared values, since MySQL has no named enum type to
// reference the way PostgreSQL does.
func (d *Dialect) renderEnumInline(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = d.QuoteString(v)
	}
	return "ENUM(" + strings.Join(quoted, ", ") + ")"
}

func (d *Dialect) buildColumnNode(c *schema.Column, enums map[string]*schema.EnumDefinition) *ast.ColumnNode {
	colType := d.RenderColumnType(c.Type)
	if c.Type.Kind == schema.KindEnum {
		if e, ok := enums[c.Type.EnumName]; ok {
			colType = d.renderEnumInline(e.Values)
		}
	}
	n := ast.NewColumn(c.Name, colType)
	if !c.Nullable {
		n.SetNotNull()
	}
	if c.AutoIncrement {
		n.SetAutoIncrement()
	}
	if c.HasDefault && !c.AutoIncrement {
		n.SetDefault(c.DefaultValue)
	}
	return n
}

func (d *Dialect) buildConstraintNode(c *schema.Constraint) *ast.ConstraintNode {
	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		return ast.NewPrimaryKeyConstraint(c.Columns...)
	case schema.ConstraintUnique:
		return ast.NewUniqueConstraint(constraintName(c), c.Columns...)
	case schema.ConstraintCheck:
		return ast.NewCheckConstraint(constraintName(c), c.CheckExpression)
	case schema.ConstraintForeignKey:
		ref := &ast.ForeignKeyRef{
			Table:    c.ReferencedTable,
			Column:   firstOrEmpty(c.ReferencedColumns),
			OnDelete: string(c.OnDelete),
			OnUpdate: string(c.OnUpdate),
		}
		return ast.NewForeignKeyConstraint(constraintName(c), c.Columns, ref)
	default:
		return &ast.ConstraintNode{}
	}
}

func constraintName(c *schema.Constraint) string {
	return strings.ToLower(string(c.Kind)) + "_" + strings.Join(c.Columns, "_")
}

func firstOrEmpty(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// RenderCreateTableWithEnums is the entry point the pipeline calls with
// the owning schema's enum table, needed to expand KindEnum columns
// inline. RenderCreateTable (the interface method) falls back to
// rendering enum columns as a bare ENUM with no values, which is only
// correct when the table has no enum columns — the pipeline always
// calls this variant instead when enums are present.
func (d *Dialect) RenderCreateTableWithEnums(t *schema.Table, enums map[string]*schema.EnumDefinition) (string, error) {
	node := ast.NewCreateTable(t.Name)
	for _, c := range t.Columns {
		node.AddColumn(d.buildColumnNode(c, enums))
	}
	for _, c := range t.Constraints {
		node.AddConstraint(d.buildConstraintNode(c))
	}
	v := &renderVisitor{d: d}
	if err := node.Accept(v); err != nil {
		return "", err
	}
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n"), nil
}

func (d *Dialect) RenderCreateTable(t *schema.Table) (string, error) {
	return d.RenderCreateTableWithEnums(t, nil)
}

func (d *Dialect) RenderDropTable(tableName string, ifExists bool) string {
	node := ast.NewDropTable(tableName)
	if ifExists {
		node.SetIfExists()
	}
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

func (d *Dialect) RenderAddColumn(tableName string, c *schema.Column) (string, error) {
	alter := ast.NewAlterTable(tableName).AddOperation(ast.AddColumnOperation{Column: d.buildColumnNode(c, nil)})
	v := &renderVisitor{d: d}
	if err := alter.Accept(v); err != nil {
		return "", err
	}
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n"), nil
}

func (d *Dialect) RenderDropColumn(tableName, columnName string) string {
	alter := ast.NewAlterTable(tableName).AddOperation(ast.DropColumnOperation{Name: columnName})
	v := &renderVisitor{d: d}
	_ = alter.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

func (d *Dialect) RenderRenameColumn(tableName, oldName, newName string) string {
	alter := ast.NewAlterTable(tableName).AddOperation(ast.RenameColumnOperation{OldName: oldName, NewName: newName})
	v := &renderVisitor{d: d}
	_ = alter.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

// RenderAlterColumnType emits a single MODIFY COLUMN clause carrying
// the column's full new definition, since MySQL requires the complete
// column spec (type, nullability, default) on every MODIFY regardless
// of which attribute actually changed.
func (d *Dialect) RenderAlterColumnType(tableName string, old, new *schema.Column) ([]string, error) {
	col := d.buildColumnNode(new, nil)
	alter := ast.NewAlterTable(tableName).AddOperation(ast.AlterColumnTypeOperation{Name: new.Name, NewType: renderFullColumnSpec(d, col)})
	v := &renderVisitor{d: d}
	if err := alter.Accept(v); err != nil {
		return nil, err
	}
	v.w.EndStatement()
	return v.w.Statements(), nil
}

func (d *Dialect) RenderCreateIndex(tableName string, i *schema.Index) string {
	node := ast.NewIndex(i.Name, tableName, i.Columns...)
	if i.Unique {
		node.SetUnique()
	}
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

func (d *Dialect) RenderDropIndex(tableName, indexName string) string {
	node := ast.NewDropIndex(indexName).SetTable(tableName)
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

func (d *Dialect) RenderAddConstraint(tableName string, c *schema.Constraint) (string, error) {
	alter := ast.NewAlterTable(tableName).AddOperation(ast.AddConstraintOperation{Constraint: d.buildConstraintNode(c)})
	v := &renderVisitor{d: d}
	if err := alter.Accept(v); err != nil {
		return "", err
	}
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n"), nil
}

// RenderDropConstraint is built directly rather than through the
// generic AlterOperation dispatch: MySQL's drop clause depends on the
// constraint's kind (DROP FOREIGN KEY vs. DROP CONSTRAINT), and
// ast.DropConstraintOperation carries only a name, not that kind.
func (d *Dialect) RenderDropConstraint(tableName string, c *schema.Constraint) (string, error) {
	clause := "DROP CONSTRAINT " + d.Quote(constraintName(c))
	if c.Kind == schema.ConstraintForeignKey {
		clause = "DROP FOREIGN KEY " + d.Quote(constraintName(c))
	}
	return fmt.Sprintf("ALTER TABLE %s %s;", d.Quote(tableName), clause), nil
}

// RenderCreateEnum returns nothing: MySQL has no standalone enum type.
func (d *Dialect) RenderCreateEnum(e *schema.EnumDefinition) []string { return nil }

// RenderDropEnum returns nothing: MySQL has no standalone enum type.
func (d *Dialect) RenderDropEnum(name string) []string { return nil }

// RenderAddEnumValues returns nothing: the value list lives on the
// column, not a shared named type. No statement is generated for an
// AddOnly enum change on MySQL; existing columns keep the value list
// they were created with.
func (d *Dialect) RenderAddEnumValues(enumName string, values []string) []string { return nil }

type renderVisitor struct {
	d *Dialect
	w sqlwriter.Writer
}

func (v *renderVisitor) VisitCreateTable(n *ast.CreateTableNode) error {
	v.w.WriteString("CREATE TABLE " + v.d.Quote(n.Name) + " (\n")
	var parts []string
	for _, c := range n.Columns {
		parts = append(parts, "  "+renderFullColumnSpec(v.d, c))
	}
	for _, c := range n.Constraints {
		parts = append(parts, "  "+renderConstraintDef(v.d, c))
	}
	v.w.WriteString(strings.Join(parts, ",\n"))
	v.w.WriteString("\n) ENGINE=InnoDB;")
	return nil
}

func (v *renderVisitor) VisitAlterTable(n *ast.AlterTableNode) error {
	var clauses []string
	for _, op := range n.Operations {
		switch o := op.(type) {
		case ast.AddColumnOperation:
			clauses = append(clauses, "ADD COLUMN "+renderFullColumnSpec(v.d, o.Column))
		case ast.DropColumnOperation:
			clauses = append(clauses, "DROP COLUMN "+v.d.Quote(o.Name))
		case ast.RenameColumnOperation:
			clauses = append(clauses, fmt.Sprintf("RENAME COLUMN %s TO %s", v.d.Quote(o.OldName), v.d.Quote(o.NewName)))
		case ast.AlterColumnTypeOperation:
			clauses = append(clauses, fmt.Sprintf("MODIFY COLUMN %s %s", v.d.Quote(o.Name), o.NewType))
		case ast.SetColumnNullableOperation:
			null := "NOT NULL"
			if o.Nullable {
				null = "NULL"
			}
			clauses = append(clauses, fmt.Sprintf("MODIFY COLUMN %s %s", v.d.Quote(o.Name), null))
		case ast.SetColumnDefaultOperation:
			if o.Default == nil {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", v.d.Quote(o.Name)))
			} else {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", v.d.Quote(o.Name), renderDefault(o.Default)))
			}
		case ast.AddConstraintOperation:
			clauses = append(clauses, "ADD CONSTRAINT "+renderConstraintDef(v.d, o.Constraint))
		case ast.DropConstraintOperation:
			clauses = append(clauses, "DROP CONSTRAINT "+v.d.Quote(o.Name))
		case ast.RenameTableOperation:
			clauses = append(clauses, "RENAME TO "+v.d.Quote(o.NewName))
		}
	}
	v.w.WriteString("ALTER TABLE " + v.d.Quote(n.Name) + " " + strings.Join(clauses, ", ") + ";")
	return nil
}

func (v *renderVisitor) VisitDropTable(n *ast.DropTableNode) error {
	stmt := "DROP TABLE "
	if n.IfExists {
		stmt += "IF EXISTS "
	}
	v.w.WriteString(stmt + v.d.Quote(n.Name) + ";")
	return nil
}

func (v *renderVisitor) VisitColumn(n *ast.ColumnNode) error {
	v.w.WriteString(renderFullColumnSpec(v.d, n))
	return nil
}

func (v *renderVisitor) VisitConstraint(n *ast.ConstraintNode) error {
	v.w.WriteString(renderConstraintDef(v.d, n))
	return nil
}

func (v *renderVisitor) VisitIndex(n *ast.IndexNode) error {
	stmt := "CREATE "
	if n.Unique {
		stmt += "UNIQUE "
	}
	quotedCols := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		quotedCols[i] = v.d.Quote(c)
	}
	stmt += fmt.Sprintf("INDEX %s ON %s (%s);", v.d.Quote(n.Name), v.d.Quote(n.Table), strings.Join(quotedCols, ", "))
	v.w.WriteString(stmt)
	return nil
}

func (v *renderVisitor) VisitDropIndex(n *ast.DropIndexNode) error {
	v.w.WriteString(fmt.Sprintf("DROP INDEX %s ON %s;", v.d.Quote(n.Name), v.d.Quote(n.Table)))
	return nil
}

func (v *renderVisitor) VisitEnum(n *ast.EnumNode) error {
	v.w.WriteString("-- enum " + n.Name + " rendered inline on MySQL columns")
	return nil
}

func (v *renderVisitor) VisitCreateType(n *ast.CreateTypeNode) error {
	v.w.WriteString("-- type " + n.Name + " rendered inline on MySQL columns")
	return nil
}

func (v *renderVisitor) VisitAlterType(n *ast.AlterTypeNode) error {
	v.w.WriteString("-- type " + n.Name + " changes rendered via MODIFY COLUMN on MySQL")
	return nil
}

func (v *renderVisitor) VisitDropType(n *ast.DropTypeNode) error {
	v.w.WriteString("-- type " + n.Name + " has no standalone form on MySQL")
	return nil
}

func (v *renderVisitor) VisitTableRebuild(n *ast.TableRebuildNode) error {
	return fmt.Errorf("mysql: table rebuild is a SQLite-only rendering strategy")
}

func (v *renderVisitor) VisitComment(n *ast.CommentNode) error {
	v.w.WriteString("-- " + n.Text)
	return nil
}

func renderFullColumnSpec(d *Dialect, c *ast.ColumnNode) string {
	def := d.Quote(c.Name) + " " + c.Type
	if !c.Nullable {
		def += " NOT NULL"
	} else {
		def += " NULL"
	}
	if c.AutoInc {
		def += " AUTO_INCREMENT"
	}
	if c.Default != nil {
		def += " DEFAULT " + renderDefault(c.Default)
	}
	if c.Unique {
		def += " UNIQUE"
	}
	return def
}

func renderDefault(def *ast.DefaultValue) string {
	if def.IsExpression() {
		return def.Expression
	}
	return def.Value
}

func renderConstraintDef(d *Dialect, c *ast.ConstraintNode) string {
	var prefix string
	if c.Name != "" {
		prefix = "CONSTRAINT " + d.Quote(c.Name) + " "
	}
	quotedCols := quoteAll(d, c.Columns)
	switch c.Type {
	case ast.ConstraintPrimaryKey:
		return prefix + "PRIMARY KEY (" + strings.Join(quotedCols, ", ") + ")"
	case ast.ConstraintUnique:
		return prefix + "UNIQUE (" + strings.Join(quotedCols, ", ") + ")"
	case ast.ConstraintCheck:
		return prefix + "CHECK (" + c.Expression + ")"
	case ast.ConstraintForeignKey:
		stmt := prefix + "FOREIGN KEY (" + strings.Join(quotedCols, ", ") + ") REFERENCES " + d.Quote(c.Reference.Table) + " (" + d.Quote(c.Reference.Column) + ")"
		if c.Reference.OnDelete != "" && c.Reference.OnDelete != "NO_ACTION" {
			stmt += " ON DELETE " + renderAction(c.Reference.OnDelete)
		}
		if c.Reference.OnUpdate != "" && c.Reference.OnUpdate != "NO_ACTION" {
			stmt += " ON UPDATE " + renderAction(c.Reference.OnUpdate)
		}
		return stmt
	default:
		return ""
	}
}

func renderAction(action string) string {
	switch action {
	case "CASCADE":
		return "CASCADE"
	case "SET_NULL":
		return "SET NULL"
	case "SET_DEFAULT":
		return "SET DEFAULT"
	case "RESTRICT":
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}

func quoteAll(d *Dialect, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.Quote(n)
	}
	return out
}
