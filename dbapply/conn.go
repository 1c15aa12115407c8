// Package dbapply is the apply-path external collaborator (§5, §6's
// Apply contract): it opens a single connection to a live database and
// executes one migration's statements inside one transaction, committing
// or rolling back as a unit. The core never imports this package — it
// only produces the statement list dbapply consumes.
//
// Grounded on ptah's migration/migrator package for the
// Initialize/transactional-apply shape, adapted from ptah's
// dbschema.DatabaseConnection wrapper to a plain database/sql
// *sql.DB, since this engine has no live-introspection layer to share
// a connection type with.
package dbapply

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schemaforge/schemaforge/sql/dialect"
)

// Conn is a single database connection used by the apply path.
type Conn struct {
	DB      *sql.DB
	Dialect dialect.Name
}

// Open connects to dsn using the driver appropriate for name:
// pgx's database/sql adapter for PostgreSQL (lib/pq stays registered
// under the driver name "postgres" for callers that prefer it, mirroring
// ptah carrying both), go-sql-driver/mysql for MySQL, and
// mattn/go-sqlite3 for SQLite.
func Open(name dialect.Name, dsn string) (*Conn, error) {
	var (
		db  *sql.DB
		err error
	)
	switch name {
	case dialect.PostgreSQL:
		db, err = openPostgres(dsn)
	case dialect.MySQL:
		db, err = openMySQL(dsn)
	case dialect.SQLite:
		db, err = openSQLite(dsn)
	default:
		return nil, fmt.Errorf("dbapply: unsupported dialect %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("dbapply: opening %s connection: %w", name, err)
	}
	return &Conn{DB: db, Dialect: name}, nil
}

// Close releases the underlying connection.
func (c *Conn) Close() error {
	return c.DB.Close()
}

// ApplyStatements executes statements in order inside a single
// transaction, committing only if every statement succeeds.
//
// On PostgreSQL and SQLite, a failure partway through leaves the
// database unchanged (both support transactional DDL). On MySQL, DDL
// commits implicitly per statement regardless of the surrounding
// transaction, so a failure partway through a migration can leave it
// partially applied — §5 documents this as an accepted limitation the
// caller must recover from (e.g. by hand-repairing state before
// retrying, or by designing migrations whose statements are individually
// idempotent).
func (c *Conn) ApplyStatements(ctx context.Context, statements []string) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbapply: beginning transaction: %w", err)
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("dbapply: executing statement: %w\nstatement: %s", err, stmt)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbapply: committing transaction: %w", err)
	}
	return nil
}
