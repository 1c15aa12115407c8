package sqlite_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect/sqlite"
)

func TestRenderCreateTableInlinesIntegerPrimaryKey(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	tbl := schema.NewTable("users")
	id := schema.NewColumn("id", schema.NewInteger())
	id.AutoIncrement = true
	tbl.AddColumn(id)
	tbl.AddColumn(schema.NewColumn("email", schema.NewVarchar(255)))
	tbl.AddConstraint(schema.NewPrimaryKey("id"))

	stmt, err := d.RenderCreateTable(tbl)
	c.Assert(err, qt.IsNil)
	c.Assert(stmt, qt.Contains, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	c.Assert(stmt, qt.Not(qt.Contains), "PRIMARY KEY (\"id\")")
}

func TestRenderAlterColumnTypeAlwaysErrors(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	old := schema.NewColumn("bio", schema.NewVarchar(100))
	new := schema.NewColumn("bio", schema.NewText())
	_, err := d.RenderAlterColumnType("users", old, new)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestRenderAddConstraintAlwaysErrors(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	_, err := d.RenderAddConstraint("users", schema.NewUniqueConstraint("email"))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestRenderRebuildSequenceAndForeignKeyPragmas(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	newTable := schema.NewTable("users")
	newTable.AddColumn(schema.NewColumn("id", schema.NewInteger()))
	newTable.AddColumn(schema.NewColumn("email", schema.NewText()))
	newTable.AddConstraint(schema.NewPrimaryKey("id"))

	stmts, err := d.RenderRebuild("users", newTable, map[string]string{"email": "email"})
	c.Assert(err, qt.IsNil)
	joined := strings.Join(stmts, "\n")

	c.Assert(joined, qt.Contains, "PRAGMA foreign_keys=OFF;")
	c.Assert(joined, qt.Contains, "BEGIN TRANSACTION;")
	c.Assert(joined, qt.Contains, `CREATE TABLE "users__schemaforge_new"`)
	c.Assert(joined, qt.Contains, `INSERT INTO "users__schemaforge_new"`)
	c.Assert(joined, qt.Contains, `DROP TABLE "users";`)
	c.Assert(joined, qt.Contains, `ALTER TABLE "users__schemaforge_new" RENAME TO "users";`)
	c.Assert(joined, qt.Contains, "COMMIT;")
	c.Assert(joined, qt.Contains, "PRAGMA foreign_keys=ON;")
}

// TestRenderRebuildRecreatesIndexesAfterRename closes the gap where a
// SQLite rebuild silently dropped every index on the rebuilt table: the
// new table's indexes must be recreated against the final table name,
// after the rename and before the transaction commits.
func TestRenderRebuildRecreatesIndexesAfterRename(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	newTable := schema.NewTable("users")
	newTable.AddColumn(schema.NewColumn("id", schema.NewInteger()))
	newTable.AddColumn(schema.NewColumn("email", schema.NewText()))
	newTable.AddConstraint(schema.NewPrimaryKey("id"))
	newTable.AddIndex(schema.NewIndex("idx_users_email", true, "email"))

	stmts, err := d.RenderRebuild("users", newTable, map[string]string{"email": "email"})
	c.Assert(err, qt.IsNil)
	joined := strings.Join(stmts, "\n")

	c.Assert(joined, qt.Contains, `CREATE UNIQUE INDEX "idx_users_email" ON "users" ("email")`)

	renamePos := strings.Index(joined, `RENAME TO "users";`)
	indexPos := strings.Index(joined, `CREATE UNIQUE INDEX "idx_users_email"`)
	commitPos := strings.Index(joined, "COMMIT;")
	c.Assert(renamePos, qt.Not(qt.Equals), -1)
	c.Assert(indexPos > renamePos, qt.IsTrue)
	c.Assert(indexPos < commitPos, qt.IsTrue)
}

func TestRenderCreateIndexWithCondition(t *testing.T) {
	c := qt.New(t)
	d := sqlite.New()

	idx := schema.NewIndex("idx_active", false, "status")
	idx.Condition = "status = 'active'"
	stmt := d.RenderCreateIndex("users", idx)
	c.Assert(stmt, qt.Contains, "WHERE status = 'active'")
}
