package dbapply

import (
	"context"
	"fmt"

	"github.com/schemaforge/schemaforge/sql/dialect"
)

// historyTable is the name of the table the apply path uses to record
// which migrations have already run. One row per applied migration
// directory, keyed by its timestamp-prefixed version string (§6).
const historyTable = "schemaforge_migrations"

// createHistoryTableSQL is intentionally written per-dialect rather than
// as one statement: AUTOINCREMENT/SERIAL/TIMESTAMP spellings diverge
// enough across PostgreSQL, MySQL, and SQLite that a single portable
// CREATE TABLE isn't worth forcing (the same reasoning the rendering
// pipeline applies to every other DDL statement it emits).
var createHistoryTableSQL = map[dialect.Name]string{
	dialect.PostgreSQL: `CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
	version TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	dialect.MySQL: `CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
	version VARCHAR(32) PRIMARY KEY,
	description TEXT NOT NULL,
	checksum VARCHAR(64) NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
	version TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// AppliedMigration is one row of the history table.
type AppliedMigration struct {
	Version     string
	Description string
	Checksum    string
	AppliedAt   string
}

// EnsureHistoryTable creates the history table if it does not already
// exist. Safe to call on every startup.
func (c *Conn) EnsureHistoryTable(ctx context.Context) error {
	stmt, ok := createHistoryTableSQL[c.Dialect]
	if !ok {
		return fmt.Errorf("dbapply: unsupported dialect %q", c.Dialect)
	}
	if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("dbapply: creating history table: %w", err)
	}
	return nil
}

// RecordApplied inserts a row marking version as applied. The apply
// contract (§6) treats statement execution and history bookkeeping as
// separate concerns — migration/migrator calls ApplyStatements and
// RecordApplied as two sequential steps rather than one transaction,
// so a migration that applies cleanly but fails to record is left
// applied-but-unrecorded rather than silently un-applied; operators
// resolve that state by hand (the bookkeeping write essentially never
// fails in practice).
func (c *Conn) RecordApplied(ctx context.Context, version, description, checksum string) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (version, description, checksum) VALUES (%s, %s, %s)`,
		historyTable, placeholder(c.Dialect, 1), placeholder(c.Dialect, 2), placeholder(c.Dialect, 3),
	)
	if _, err := c.DB.ExecContext(ctx, query, version, description, checksum); err != nil {
		return fmt.Errorf("dbapply: recording applied migration %s: %w", version, err)
	}
	return nil
}

// RemoveApplied deletes version's row from the history table, used by
// MigrateDown once a migration's down statements have run successfully.
func (c *Conn) RemoveApplied(ctx context.Context, version string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE version = %s`, historyTable, placeholder(c.Dialect, 1))
	if _, err := c.DB.ExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("dbapply: removing applied migration %s: %w", version, err)
	}
	return nil
}

// AppliedVersions returns every recorded version, ordered lexically
// (equivalently chronologically, since versions are fixed-width
// YYYYMMDDHHMMSS timestamps).
func (c *Conn) AppliedVersions(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT version FROM %s ORDER BY version ASC`, historyTable)
	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dbapply: listing applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("dbapply: scanning applied migration row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dbapply: iterating applied migrations: %w", err)
	}
	return versions, nil
}

// placeholder returns the bind-parameter marker the driver for name
// expects: pgx and lib/pq both require $N, MySQL and SQLite accept a
// plain "?".
func placeholder(name dialect.Name, n int) string {
	if name == dialect.PostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
