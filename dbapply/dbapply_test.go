package dbapply_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/dbapply"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

func openTestConn(c *qt.C) *dbapply.Conn {
	conn, err := dbapply.Open(dialect.SQLite, ":memory:")
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestOpenRejectsUnsupportedDialect(t *testing.T) {
	c := qt.New(t)

	_, err := dbapply.Open(dialect.Name("oracle"), "")
	c.Assert(err, qt.ErrorMatches, ".*unsupported dialect.*")
}

func TestApplyStatementsCommitsOnSuccess(t *testing.T) {
	c := qt.New(t)
	conn := openTestConn(c)
	ctx := context.Background()

	err := conn.ApplyStatements(ctx, []string{
		`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO widgets (id, name) VALUES (1, 'sprocket')`,
	})
	c.Assert(err, qt.IsNil)

	row := conn.DB.QueryRowContext(ctx, `SELECT name FROM widgets WHERE id = 1`)
	var name string
	c.Assert(row.Scan(&name), qt.IsNil)
	c.Assert(name, qt.Equals, "sprocket")
}

func TestApplyStatementsRollsBackOnFailure(t *testing.T) {
	c := qt.New(t)
	conn := openTestConn(c)
	ctx := context.Background()

	err := conn.ApplyStatements(ctx, []string{
		`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`,
		`INSERT INTO nonexistent_table (id) VALUES (1)`,
	})
	c.Assert(err, qt.IsNotNil)

	_, err = conn.DB.ExecContext(ctx, `SELECT 1 FROM widgets`)
	c.Assert(err, qt.IsNotNil)
}

func TestHistoryTableLifecycle(t *testing.T) {
	c := qt.New(t)
	conn := openTestConn(c)
	ctx := context.Background()

	c.Assert(conn.EnsureHistoryTable(ctx), qt.IsNil)
	c.Assert(conn.EnsureHistoryTable(ctx), qt.IsNil) // idempotent

	c.Assert(conn.RecordApplied(ctx, "20260101120000_create_users", "create users", "deadbeef"), qt.IsNil)
	c.Assert(conn.RecordApplied(ctx, "20260102120000_add_index", "add index", "cafebabe"), qt.IsNil)

	versions, err := conn.AppliedVersions(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(versions, qt.DeepEquals, []string{
		"20260101120000_create_users",
		"20260102120000_add_index",
	})

	c.Assert(conn.RemoveApplied(ctx, "20260101120000_create_users"), qt.IsNil)

	versions, err = conn.AppliedVersions(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(versions, qt.DeepEquals, []string{"20260102120000_add_index"})
}
