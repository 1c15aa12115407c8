// Package postgres implements the dialect.Dialect capability set for
// PostgreSQL.
//
// Grounded on ptah's migration/planner/dialects/postgres/postgres.go
// for the staged-orchestration idiom and on ptah's core/renderer
// package shape (a dialect owns a Visitor that lowers *ast.Node values
// to text) — ptah's own postgres renderer implementation was not
// present in the retrieved pack (only its _test.go files were), so the
// visitor body below is original, built against the same *ast.Node
// surface the mysql renderer's delegation confirms the shape of.
package postgres

import (
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/core/ast"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect"
	"github.com/schemaforge/schemaforge/sql/dialect/internal/sqlwriter"
)

func init() {
	dialect.Register(dialect.PostgreSQL, func() dialect.Dialect { return New() })
}

// Dialect renders PostgreSQL DDL.
type Dialect struct{}

// New creates a PostgreSQL dialect backend.
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Name() dialect.Name { return dialect.PostgreSQL }

func (d *Dialect) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (d *Dialect) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d *Dialect) SupportsAlterColumnType() bool { return true }
func (d *Dialect) SupportsAddConstraint() bool    { return true }
func (d *Dialect) SupportsEnumType() bool         { return true }

func (d *Dialect) RenderColumnType(t schema.ColumnType) string {
	switch t.Kind {
	case schema.KindInteger:
		if t.HasPrecision && t.Precision >= 8 {
			return "BIGINT"
		}
		return "INTEGER"
	case schema.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case schema.KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Length)
	case schema.KindText:
		return "TEXT"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindDate:
		return "DATE"
	case schema.KindTime:
		if t.WithTZ {
			return "TIME WITH TIME ZONE"
		}
		return "TIME"
	case schema.KindTimestamp:
		if t.WithTZ {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return "TIMESTAMP"
	case schema.KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.DecimalPrecision, t.DecimalScale)
	case schema.KindFloat:
		return "REAL"
	case schema.KindDouble:
		return "DOUBLE PRECISION"
	case schema.KindBlob:
		return "BYTEA"
	case schema.KindUUID:
		return "UUID"
	case schema.KindJSON:
		return "JSON"
	case schema.KindJSONB:
		return "JSONB"
	case schema.KindEnum:
		return d.Quote(t.EnumName)
	case schema.KindDialectSpecific:
		return t.DialectKind
	default:
		return "TEXT"
	}
}

func (d *Dialect) buildColumnNode(c *schema.Column) *ast.ColumnNode {
	colType := d.RenderColumnType(c.Type)
	if c.AutoIncrement {
		if c.Type.Kind == schema.KindInteger && c.Type.HasPrecision && c.Type.Precision >= 8 {
			colType = "BIGSERIAL"
		} else {
			colType = "SERIAL"
		}
	}
	n := ast.NewColumn(c.Name, colType)
	if !c.Nullable {
		n.SetNotNull()
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

func (d *Dialect) RenderCreateTable(t *schema.Table) (string, error) {
	node := ast.NewCreateTable(t.Name)
	for _, c := range t.Columns {
		node.AddColumn(d.buildColumnNode(c))
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
	alter := ast.NewAlterTable(tableName).AddOperation(ast.AddColumnOperation{Column: d.buildColumnNode(c)})
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

// RenderAlterColumnType emits a single ALTER TABLE statement with one
// comma-separated ALTER COLUMN clause per changed attribute, since
// PostgreSQL requires a separate clause for type vs. default vs.
// nullability.
func (d *Dialect) RenderAlterColumnType(tableName string, old, new *schema.Column) ([]string, error) {
	var stmts []string
	alter := ast.NewAlterTable(tableName)
	if old == nil || !old.Type.Equal(new.Type) {
		using := ""
		alter.AddOperation(ast.AlterColumnTypeOperation{Name: new.Name, NewType: d.RenderColumnType(new.Type), Using: using})
	}
	if old == nil || old.Nullable != new.Nullable {
		alter.AddOperation(ast.SetColumnNullableOperation{Name: new.Name, Nullable: new.Nullable})
	}
	if old == nil || old.HasDefault != new.HasDefault || old.DefaultValue != new.DefaultValue {
		var def *ast.DefaultValue
		if new.HasDefault {
			def = &ast.DefaultValue{Value: new.DefaultValue}
		}
		alter.AddOperation(ast.SetColumnDefaultOperation{Name: new.Name, Default: def})
	}
	if len(alter.Operations) == 0 {
		return nil, nil
	}
	v := &renderVisitor{d: d}
	if err := alter.Accept(v); err != nil {
		return nil, err
	}
	v.w.EndStatement()
	stmts = append(stmts, v.w.Statements()...)
	return stmts, nil
}

func (d *Dialect) RenderCreateIndex(tableName string, i *schema.Index) string {
	node := ast.NewIndex(i.Name, tableName, i.Columns...)
	if i.Unique {
		node.SetUnique()
	}
	node.Condition = i.Condition
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n")
}

func (d *Dialect) RenderDropIndex(tableName, indexName string) string {
	node := ast.NewDropIndex(indexName).SetIfExists()
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

func (d *Dialect) RenderDropConstraint(tableName string, c *schema.Constraint) (string, error) {
	alter := ast.NewAlterTable(tableName).AddOperation(ast.DropConstraintOperation{Name: constraintName(c), IfExists: true})
	v := &renderVisitor{d: d}
	if err := alter.Accept(v); err != nil {
		return "", err
	}
	v.w.EndStatement()
	return strings.Join(v.w.Statements(), "\n"), nil
}

func (d *Dialect) RenderCreateEnum(e *schema.EnumDefinition) []string {
	node := ast.NewCreateType(e.Name, ast.NewEnumTypeDef(e.Values...))
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return v.w.Statements()
}

func (d *Dialect) RenderDropEnum(name string) []string {
	node := ast.NewDropType(name).SetIfExists()
	v := &renderVisitor{d: d}
	_ = node.Accept(v)
	v.w.EndStatement()
	return v.w.Statements()
}

func (d *Dialect) RenderAddEnumValues(enumName string, values []string) []string {
	var stmts []string
	for _, val := range values {
		node := ast.NewAlterType(enumName).AddOperation(ast.AddEnumValueOperation{Value: val})
		v := &renderVisitor{d: d}
		_ = node.Accept(v)
		v.w.EndStatement()
		stmts = append(stmts, v.w.Statements()...)
	}
	return stmts
}

// renderVisitor lowers *ast.Node values into PostgreSQL text.
type renderVisitor struct {
	d *Dialect
	w sqlwriter.Writer
}

func (v *renderVisitor) VisitCreateTable(n *ast.CreateTableNode) error {
	v.w.WriteString("CREATE TABLE " + v.d.Quote(n.Name) + " (\n")
	var parts []string
	for _, c := range n.Columns {
		parts = append(parts, "  "+renderColumnDef(v.d, c))
	}
	for _, c := range n.Constraints {
		parts = append(parts, "  "+renderConstraintDef(v.d, c))
	}
	v.w.WriteString(strings.Join(parts, ",\n"))
	v.w.WriteString("\n);")
	return nil
}

func (v *renderVisitor) VisitAlterTable(n *ast.AlterTableNode) error {
	var clauses []string
	for _, op := range n.Operations {
		switch o := op.(type) {
		case ast.AddColumnOperation:
			clauses = append(clauses, "ADD COLUMN "+renderColumnDef(v.d, o.Column))
		case ast.DropColumnOperation:
			stmt := "DROP COLUMN "
			if o.IfExists {
				stmt += "IF EXISTS "
			}
			clauses = append(clauses, stmt+v.d.Quote(o.Name))
		case ast.RenameColumnOperation:
			// PostgreSQL cannot combine RENAME COLUMN with other
			// clauses in one ALTER TABLE; emit it as its own statement.
			if len(clauses) > 0 {
				v.w.WriteString("ALTER TABLE " + v.d.Quote(n.Name) + " " + strings.Join(clauses, ", ") + ";")
				v.w.EndStatement()
				clauses = nil
			}
			v.w.WriteString(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", v.d.Quote(n.Name), v.d.Quote(o.OldName), v.d.Quote(o.NewName)))
			v.w.EndStatement()
		case ast.AlterColumnTypeOperation:
			clause := fmt.Sprintf("ALTER COLUMN %s TYPE %s", v.d.Quote(o.Name), o.NewType)
			if o.Using != "" {
				clause += " USING " + o.Using
			}
			clauses = append(clauses, clause)
		case ast.SetColumnNullableOperation:
			if o.Nullable {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", v.d.Quote(o.Name)))
			} else {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", v.d.Quote(o.Name)))
			}
		case ast.SetColumnDefaultOperation:
			if o.Default == nil {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", v.d.Quote(o.Name)))
			} else {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", v.d.Quote(o.Name), renderDefault(v.d, o.Default)))
			}
		case ast.AddConstraintOperation:
			clauses = append(clauses, "ADD CONSTRAINT "+renderConstraintDef(v.d, o.Constraint))
		case ast.DropConstraintOperation:
			stmt := "DROP CONSTRAINT "
			if o.IfExists {
				stmt += "IF EXISTS "
			}
			clauses = append(clauses, stmt+v.d.Quote(o.Name))
		case ast.RenameTableOperation:
			if len(clauses) > 0 {
				v.w.WriteString("ALTER TABLE " + v.d.Quote(n.Name) + " " + strings.Join(clauses, ", ") + ";")
				v.w.EndStatement()
				clauses = nil
			}
			v.w.WriteString(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", v.d.Quote(n.Name), v.d.Quote(o.NewName)))
			v.w.EndStatement()
		}
	}
	if len(clauses) > 0 {
		v.w.WriteString("ALTER TABLE " + v.d.Quote(n.Name) + " " + strings.Join(clauses, ", ") + ";")
	}
	return nil
}

func (v *renderVisitor) VisitDropTable(n *ast.DropTableNode) error {
	stmt := "DROP TABLE "
	if n.IfExists {
		stmt += "IF EXISTS "
	}
	stmt += v.d.Quote(n.Name)
	if n.Cascade {
		stmt += " CASCADE"
	}
	v.w.WriteString(stmt + ";")
	return nil
}

func (v *renderVisitor) VisitColumn(n *ast.ColumnNode) error {
	v.w.WriteString(renderColumnDef(v.d, n))
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
	stmt += fmt.Sprintf("INDEX %s ON %s (%s)", v.d.Quote(n.Name), v.d.Quote(n.Table), strings.Join(quotedCols, ", "))
	if n.Condition != "" {
		stmt += " WHERE " + n.Condition
	}
	v.w.WriteString(stmt + ";")
	return nil
}

func (v *renderVisitor) VisitDropIndex(n *ast.DropIndexNode) error {
	stmt := "DROP INDEX "
	if n.IfExists {
		stmt += "IF EXISTS "
	}
	v.w.WriteString(stmt + v.d.Quote(n.Name) + ";")
	return nil
}

func (v *renderVisitor) VisitEnum(n *ast.EnumNode) error {
	return v.VisitCreateType(ast.NewCreateType(n.Name, ast.NewEnumTypeDef(n.Values...)))
}

func (v *renderVisitor) VisitCreateType(n *ast.CreateTypeNode) error {
	enumDef, ok := n.TypeDef.(ast.EnumTypeDef)
	if !ok {
		return fmt.Errorf("postgres: unsupported type definition for %q", n.Name)
	}
	quoted := make([]string, len(enumDef.Values))
	for i, val := range enumDef.Values {
		quoted[i] = v.d.QuoteString(val)
	}
	v.w.WriteString(fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", v.d.Quote(n.Name), strings.Join(quoted, ", ")))
	return nil
}

func (v *renderVisitor) VisitAlterType(n *ast.AlterTypeNode) error {
	for i, op := range n.Operations {
		if i > 0 {
			v.w.EndStatement()
		}
		switch o := op.(type) {
		case ast.AddEnumValueOperation:
			stmt := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", v.d.Quote(n.Name), v.d.QuoteString(o.Value))
			if o.Before != "" {
				stmt += " BEFORE " + v.d.QuoteString(o.Before)
			}
			v.w.WriteString(stmt + ";")
		case ast.RenameEnumValueOperation:
			v.w.WriteString(fmt.Sprintf("ALTER TYPE %s RENAME VALUE %s TO %s;", v.d.Quote(n.Name), v.d.QuoteString(o.OldValue), v.d.QuoteString(o.NewValue)))
		}
	}
	return nil
}

func (v *renderVisitor) VisitDropType(n *ast.DropTypeNode) error {
	stmt := "DROP TYPE "
	if n.IfExists {
		stmt += "IF EXISTS "
	}
	stmt += v.d.Quote(n.Name)
	if n.Cascade {
		stmt += " CASCADE"
	}
	v.w.WriteString(stmt + ";")
	return nil
}

func (v *renderVisitor) VisitTableRebuild(n *ast.TableRebuildNode) error {
	return fmt.Errorf("postgres: table rebuild is a SQLite-only rendering strategy")
}

func (v *renderVisitor) VisitComment(n *ast.CommentNode) error {
	v.w.WriteString("-- " + n.Text)
	return nil
}

func renderColumnDef(d *Dialect, c *ast.ColumnNode) string {
	def := d.Quote(c.Name) + " " + c.Type
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Default != nil {
		def += " DEFAULT " + renderDefault(d, c.Default)
	}
	if c.Unique {
		def += " UNIQUE"
	}
	if c.Check != "" {
		def += " CHECK (" + c.Check + ")"
	}
	return def
}

func renderDefault(d *Dialect, def *ast.DefaultValue) string {
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
