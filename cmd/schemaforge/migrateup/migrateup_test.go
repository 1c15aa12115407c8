package migrateup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/cmd/schemaforge/migrateup"
	"github.com/schemaforge/schemaforge/config"
	"github.com/schemaforge/schemaforge/migration/generator"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

const notesSchemaYAML = `
version: "1.0"
tables:
  notes:
    columns:
      - name: id
        type: {kind: INTEGER}
        auto_increment: true
      - name: body
        type: {kind: TEXT}
        nullable: false
    primary_key: [id]
`

func TestMigrateUpCommand(t *testing.T) {
	c := qt.New(t)
	cmd := migrateup.NewMigrateUpCommand()

	c.Assert(cmd, qt.IsNotNil)
	c.Assert(cmd.Use, qt.Equals, "migrate-up")

	t.Run("requires db-url", func(t *testing.T) {
		c := qt.New(t)
		cmd.SetArgs([]string{"--migrations-dir", t.TempDir()})
		err := cmd.Execute()
		c.Assert(err, qt.ErrorMatches, ".*db-url.*required.*")
	})

	t.Run("applies a generated migration against sqlite", func(t *testing.T) {
		c := qt.New(t)
		schemaDir := t.TempDir()
		migrationsDir := t.TempDir()
		c.Assert(os.WriteFile(filepath.Join(schemaDir, "schema.yaml"), []byte(notesSchemaYAML), 0o644), qt.IsNil)

		opts := config.WithDialect(dialect.SQLite)
		opts.MigrationsDir = migrationsDir
		_, err := generator.Generate(schemaDir, "create notes table", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), opts)
		c.Assert(err, qt.IsNil)

		dbPath := filepath.Join(t.TempDir(), "app.db")
		cmd.SetArgs([]string{
			"--db-url", dbPath,
			"--migrations-dir", migrationsDir,
			"--verbose",
		})
		c.Assert(cmd.Execute(), qt.IsNil)

		_, err = os.Stat(dbPath)
		c.Assert(err, qt.IsNil)
	})
}
