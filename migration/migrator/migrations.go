package migrator

import (
	"context"
	"fmt"
	"regexp"

	"github.com/schemaforge/schemaforge/dbapply"
	"github.com/schemaforge/schemaforge/internal/sqlsplit"
)

// MigrationFunc applies or reverts one migration against a live
// connection.
type MigrationFunc func(context.Context, *dbapply.Conn) error

// NoopMigrationFunc is a no-op migration function.
func NoopMigrationFunc(_ context.Context, _ *dbapply.Conn) error {
	return nil
}

// Migration represents one generated migration (§6): a directory
// named "<timestamp>_<sanitized_description>", where Version is that
// directory's timestamp prefix. Because the timestamp is a
// fixed-width YYYYMMDDHHMMSS string, ordinary string comparison orders
// migrations chronologically without parsing them.
type Migration struct {
	Version     string
	Description string
	Checksum    string
	Up          MigrationFunc
	Down        MigrationFunc
}

// versionPattern matches a migration directory name: a 14-digit
// timestamp, an underscore, and a non-empty sanitized description.
var versionPattern = regexp.MustCompile(`^(\d{14})_(.+)$`)

// ParseMigrationDirName splits a migration directory's base name into
// its timestamp and description. It does not validate that the
// timestamp is a real calendar date; that's the generator's job at
// creation time.
func ParseMigrationDirName(name string) (timestamp, description string, err error) {
	m := versionPattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", fmt.Errorf("migrator: %q is not a valid migration directory name (want TIMESTAMP_description)", name)
	}
	return m[1], m[2], nil
}

// CreateMigrationFromSQL builds a Migration whose Up/Down functions
// split upSQL/downSQL into individual statements and apply them
// through conn.ApplyStatements — the programmatic counterpart to a
// migration loaded from an up.sql/down.sql pair on disk.
func CreateMigrationFromSQL(version, description, checksum, upSQL, downSQL string) *Migration {
	return &Migration{
		Version:     version,
		Description: description,
		Checksum:    checksum,
		Up:          sqlMigrationFunc(upSQL),
		Down:        sqlMigrationFunc(downSQL),
	}
}

func sqlMigrationFunc(sql string) MigrationFunc {
	return func(ctx context.Context, conn *dbapply.Conn) error {
		statements := sqlsplit.Split(sql)
		if len(statements) == 0 {
			return nil
		}
		return conn.ApplyStatements(ctx, statements)
	}
}
