package migrator_test

import (
	"context"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/dbapply"
	"github.com/schemaforge/schemaforge/migration/migrator"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

func openTestConn(c *qt.C) *dbapply.Conn {
	conn, err := dbapply.Open(dialect.SQLite, ":memory:")
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = conn.Close() })
	return conn
}

func twoMigrationProvider() *migrator.RegisteredMigrationProvider {
	return migrator.NewRegisteredMigrationProvider(
		migrator.CreateMigrationFromSQL(
			"20260101000000", "create widgets", "checksum1",
			`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)`,
			`DROP TABLE widgets`,
		),
		migrator.CreateMigrationFromSQL(
			"20260102000000", "add widgets index", "checksum2",
			`CREATE INDEX idx_widgets_name ON widgets(name)`,
			`DROP INDEX idx_widgets_name`,
		),
	)
}

func TestNewMigrator(t *testing.T) {
	c := qt.New(t)

	provider := migrator.NewRegisteredMigrationProvider()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, provider)
	c.Assert(m, qt.IsNotNil)
	c.Assert(m.MigrationProvider(), qt.Equals, provider)
}

func TestMigratorWithLogger(t *testing.T) {
	c := qt.New(t)

	provider := migrator.NewRegisteredMigrationProvider()
	conn := openTestConn(c)
	m := migrator.NewMigrator(conn, provider)

	m2 := m.WithLogger(slog.Default())
	c.Assert(m2, qt.Not(qt.Equals), m)
}

func TestMigrateUpAppliesAllPendingInOrder(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())
	c.Assert(m.MigrateUp(ctx), qt.IsNil)

	applied, err := m.GetAppliedMigrations(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.DeepEquals, []string{"20260101000000", "20260102000000"})

	current, err := m.GetCurrentVersion(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(current, qt.Equals, "20260102000000")

	_, err = conn.DB.ExecContext(ctx, `SELECT 1 FROM widgets`)
	c.Assert(err, qt.IsNil)
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())
	c.Assert(m.MigrateUp(ctx), qt.IsNil)
	c.Assert(m.MigrateUp(ctx), qt.IsNil)

	applied, err := m.GetAppliedMigrations(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.HasLen, 2)
}

func TestGetMigrationStatusReflectsPendingWork(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())

	status, err := m.GetMigrationStatus(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(status.CurrentVersion, qt.Equals, "")
	c.Assert(status.TotalMigrations, qt.Equals, 2)
	c.Assert(status.HasPendingChanges, qt.IsTrue)
	c.Assert(status.PendingMigrations, qt.HasLen, 2)

	c.Assert(m.MigrateUp(ctx), qt.IsNil)

	status, err = m.GetMigrationStatus(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(status.CurrentVersion, qt.Equals, "20260102000000")
	c.Assert(status.HasPendingChanges, qt.IsFalse)
}

func TestMigrateDownRevertsMostRecentOnly(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())
	c.Assert(m.MigrateUp(ctx), qt.IsNil)

	c.Assert(m.MigrateDown(ctx), qt.IsNil)

	applied, err := m.GetAppliedMigrations(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.DeepEquals, []string{"20260101000000"})

	_, err = conn.DB.ExecContext(ctx, `SELECT 1 FROM widgets`)
	c.Assert(err, qt.IsNil) // the table itself survives; only the index migration reverted
}

func TestMigrateDownToRevertsEverythingPastTarget(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())
	c.Assert(m.MigrateUp(ctx), qt.IsNil)

	c.Assert(m.MigrateDownTo(ctx, ""), qt.IsNil)

	applied, err := m.GetAppliedMigrations(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.HasLen, 0)

	_, err = conn.DB.ExecContext(ctx, `SELECT 1 FROM widgets`)
	c.Assert(err, qt.IsNotNil)
}

func TestMigrateToAppliesForwardAndBackward(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())

	c.Assert(m.MigrateTo(ctx, "20260101000000"), qt.IsNil)
	current, err := m.GetCurrentVersion(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(current, qt.Equals, "20260101000000")

	c.Assert(m.MigrateTo(ctx, "20260102000000"), qt.IsNil)
	current, err = m.GetCurrentVersion(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(current, qt.Equals, "20260102000000")

	c.Assert(m.MigrateTo(ctx, ""), qt.IsNil)
	current, err = m.GetCurrentVersion(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(current, qt.Equals, "")
}

func TestGetPreviousMigrationVersionErrorsWithFewerThanTwoApplied(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	conn := openTestConn(c)

	m := migrator.NewMigrator(conn, twoMigrationProvider())
	_, err := m.GetPreviousMigrationVersion(ctx)
	c.Assert(err, qt.ErrorMatches, ".*no previous migrations exist.*")

	c.Assert(m.MigrateTo(ctx, "20260101000000"), qt.IsNil)
	_, err = m.GetPreviousMigrationVersion(ctx)
	c.Assert(err, qt.ErrorMatches, ".*no previous migrations exist.*")
}
