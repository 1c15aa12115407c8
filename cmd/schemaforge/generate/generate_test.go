package generate_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/cmd/schemaforge/generate"
)

const usersSchemaYAML = `
version: "1.0"
tables:
  users:
    columns:
      - name: id
        type: {kind: INTEGER}
        auto_increment: true
      - name: email
        type: {kind: VARCHAR, length: 255}
        nullable: false
    primary_key: [id]
`

// TestGenerateCommand shares a single cobra.Command across all its
// cases: generate.NewGenerateCommand registers flags on a package-level
// command var, so a second registration would panic with "flag
// redefined".
func TestGenerateCommand(t *testing.T) {
	c := qt.New(t)
	cmd := generate.NewGenerateCommand()

	c.Assert(cmd, qt.IsNotNil)
	c.Assert(cmd.Use, qt.Equals, "generate")
	c.Assert(cmd.Short, qt.Contains, "Generate a migration")

	t.Run("requires description", func(t *testing.T) {
		c := qt.New(t)
		dir := t.TempDir()
		c.Assert(os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(usersSchemaYAML), 0o644), qt.IsNil)

		cmd.SetArgs([]string{
			"--schema-dir", dir,
			"--migrations-dir", t.TempDir(),
			"--description", "",
		})
		err := cmd.Execute()
		c.Assert(err, qt.ErrorMatches, ".*description.*required.*")
	})

	t.Run("writes migration", func(t *testing.T) {
		c := qt.New(t)
		schemaDir := t.TempDir()
		migrationsDir := t.TempDir()
		c.Assert(os.WriteFile(filepath.Join(schemaDir, "schema.yaml"), []byte(usersSchemaYAML), 0o644), qt.IsNil)

		cmd.SetArgs([]string{
			"--schema-dir", schemaDir,
			"--migrations-dir", migrationsDir,
			"--description", "create users table",
			"--dialect", "postgres",
		})
		c.Assert(cmd.Execute(), qt.IsNil)

		entries, err := os.ReadDir(migrationsDir)
		c.Assert(err, qt.IsNil)
		c.Assert(len(entries), qt.Equals, 1)
	})
}
