package ast_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/ast"
)

// recordingVisitor records which VisitX method each Accept call
// dispatched to, without rendering any SQL.
type recordingVisitor struct {
	calls []string
}

func (v *recordingVisitor) VisitCreateTable(n *ast.CreateTableNode) error {
	v.calls = append(v.calls, "CreateTable")
	return nil
}
func (v *recordingVisitor) VisitAlterTable(n *ast.AlterTableNode) error {
	v.calls = append(v.calls, "AlterTable")
	return nil
}
func (v *recordingVisitor) VisitDropTable(n *ast.DropTableNode) error {
	v.calls = append(v.calls, "DropTable")
	return nil
}
func (v *recordingVisitor) VisitColumn(n *ast.ColumnNode) error {
	v.calls = append(v.calls, "Column")
	return nil
}
func (v *recordingVisitor) VisitConstraint(n *ast.ConstraintNode) error {
	v.calls = append(v.calls, "Constraint")
	return nil
}
func (v *recordingVisitor) VisitIndex(n *ast.IndexNode) error {
	v.calls = append(v.calls, "Index")
	return nil
}
func (v *recordingVisitor) VisitDropIndex(n *ast.DropIndexNode) error {
	v.calls = append(v.calls, "DropIndex")
	return nil
}
func (v *recordingVisitor) VisitEnum(n *ast.EnumNode) error {
	v.calls = append(v.calls, "Enum")
	return nil
}
func (v *recordingVisitor) VisitCreateType(n *ast.CreateTypeNode) error {
	v.calls = append(v.calls, "CreateType")
	return nil
}
func (v *recordingVisitor) VisitAlterType(n *ast.AlterTypeNode) error {
	v.calls = append(v.calls, "AlterType")
	return nil
}
func (v *recordingVisitor) VisitDropType(n *ast.DropTypeNode) error {
	v.calls = append(v.calls, "DropType")
	return nil
}
func (v *recordingVisitor) VisitTableRebuild(n *ast.TableRebuildNode) error {
	v.calls = append(v.calls, "TableRebuild")
	return nil
}
func (v *recordingVisitor) VisitComment(n *ast.CommentNode) error {
	v.calls = append(v.calls, "Comment")
	return nil
}

func TestAcceptDispatchesToMatchingVisitMethod(t *testing.T) {
	c := qt.New(t)
	v := &recordingVisitor{}

	nodes := []ast.Node{
		ast.NewCreateTable("users"),
		ast.NewAlterTable("users"),
		ast.NewDropTable("users"),
		ast.NewColumn("id", "INTEGER"),
		ast.NewIndex("idx_users_email", "users", "email"),
		ast.NewDropIndex("idx_users_email"),
		ast.NewEnum("status", "active", "inactive"),
		ast.NewComment("note"),
		ast.NewTableRebuild("users", ast.NewCreateTable("users__new")),
	}

	for _, n := range nodes {
		c.Assert(n.Accept(v), qt.IsNil)
	}

	c.Assert(v.calls, qt.DeepEquals, []string{
		"CreateTable", "AlterTable", "DropTable", "Column",
		"Index", "DropIndex", "Enum", "Comment", "TableRebuild",
	})
}

func TestCreateTableNodeBuilders(t *testing.T) {
	c := qt.New(t)

	tbl := ast.NewCreateTable("users").
		AddColumn(ast.NewColumn("id", "INTEGER").SetPrimary()).
		AddColumn(ast.NewColumn("email", "VARCHAR(255)").SetUnique().SetNotNull()).
		SetOption("ENGINE", "InnoDB").
		SetComment("user accounts")

	c.Assert(tbl.Columns, qt.HasLen, 2)
	c.Assert(tbl.Columns[0].Primary, qt.IsTrue)
	c.Assert(tbl.Columns[0].Nullable, qt.IsFalse)
	c.Assert(tbl.Columns[1].Unique, qt.IsTrue)
	c.Assert(tbl.Columns[1].Nullable, qt.IsFalse)
	c.Assert(tbl.Options["ENGINE"], qt.Equals, "InnoDB")
	c.Assert(tbl.Comment, qt.Equals, "user accounts")
}

func TestColumnNodeDefaults(t *testing.T) {
	c := qt.New(t)

	withLiteral := ast.NewColumn("status", "VARCHAR(20)").SetDefault("active")
	c.Assert(withLiteral.Default.IsExpression(), qt.IsFalse)
	c.Assert(withLiteral.Default.Value, qt.Equals, "active")

	withExpr := ast.NewColumn("created_at", "TIMESTAMP").SetDefaultExpression("NOW()")
	c.Assert(withExpr.Default.IsExpression(), qt.IsTrue)
}

func TestColumnNodeForeignKey(t *testing.T) {
	c := qt.New(t)

	col := ast.NewColumn("user_id", "INTEGER").SetForeignKey("users", "id", "fk_posts_user")
	c.Assert(col.ForeignKey, qt.Not(qt.IsNil))
	c.Assert(col.ForeignKey.Table, qt.Equals, "users")
	c.Assert(col.ForeignKey.Column, qt.Equals, "id")
}

func TestTableRebuildNodeBuilders(t *testing.T) {
	c := qt.New(t)

	node := ast.NewTableRebuild("users", ast.NewCreateTable("users__new")).
		MapColumn("email", "email_address").
		SetComment("type change requires rebuild").
		AddIndex(ast.NewIndex("idx_users_email", "users", "email"))

	c.Assert(node.ColumnMapping["email"], qt.Equals, "email_address")
	c.Assert(node.Comment, qt.Equals, "type change requires rebuild")
	c.Assert(node.Indexes, qt.HasLen, 1)
	c.Assert(node.Indexes[0].Name, qt.Equals, "idx_users_email")
}

func TestIndexNodeUnique(t *testing.T) {
	c := qt.New(t)

	idx := ast.NewIndex("idx_a", "t", "a").SetUnique()
	c.Assert(idx.Unique, qt.IsTrue)
}

func TestConstraintConstructors(t *testing.T) {
	c := qt.New(t)

	pk := ast.NewPrimaryKeyConstraint("id")
	c.Assert(pk.Type, qt.Equals, ast.ConstraintPrimaryKey)

	fk := ast.NewForeignKeyConstraint("fk_posts_user", []string{"user_id"}, &ast.ForeignKeyRef{Table: "users", Column: "id"})
	c.Assert(fk.Type, qt.Equals, ast.ConstraintForeignKey)
	c.Assert(fk.Reference.Table, qt.Equals, "users")

	chk := ast.NewCheckConstraint("chk_total_positive", "total > 0")
	c.Assert(chk.Type, qt.Equals, ast.ConstraintCheck)
	c.Assert(chk.Expression, qt.Equals, "total > 0")
}
