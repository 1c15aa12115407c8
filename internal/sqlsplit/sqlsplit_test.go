package sqlsplit_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/internal/sqlsplit"
)

func TestSplitBasic(t *testing.T) {
	c := qt.New(t)

	stmts := sqlsplit.Split(`CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);`)
	c.Assert(stmts, qt.DeepEquals, []string{
		"CREATE TABLE a (id INTEGER)",
		"CREATE TABLE b (id INTEGER)",
	})
}

func TestSplitIgnoresSemicolonInStringLiteral(t *testing.T) {
	c := qt.New(t)

	stmts := sqlsplit.Split(`INSERT INTO t (note) VALUES ('a; b'); SELECT 1;`)
	c.Assert(stmts, qt.DeepEquals, []string{
		`INSERT INTO t (note) VALUES ('a; b')`,
		"SELECT 1",
	})
}

func TestSplitStripsComments(t *testing.T) {
	c := qt.New(t)

	stmts := sqlsplit.Split("-- a leading comment\nCREATE TABLE a (id INTEGER); /* block\ncomment */ SELECT 1;")
	c.Assert(stmts, qt.DeepEquals, []string{
		"CREATE TABLE a (id INTEGER)",
		"SELECT 1",
	})
}

func TestSplitEmptyInputYieldsEmptySlice(t *testing.T) {
	c := qt.New(t)

	stmts := sqlsplit.Split("   \n\t  ")
	c.Assert(stmts, qt.HasLen, 0)
}

func TestSplitHandlesEscapedQuote(t *testing.T) {
	c := qt.New(t)

	stmts := sqlsplit.Split(`SELECT 'it''s fine; really';`)
	c.Assert(stmts, qt.DeepEquals, []string{`SELECT 'it''s fine; really'`})
}
