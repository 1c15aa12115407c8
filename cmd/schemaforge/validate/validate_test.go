package validate_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/cmd/schemaforge/validate"
)

const validSchemaYAML = `
version: "1.0"
tables:
  users:
    columns:
      - name: id
        type: {kind: INTEGER}
        auto_increment: true
    primary_key: [id]
`

// users.id declares DECIMAL precision 9999, which the Validator rejects.
const invalidSchemaYAML = `
version: "1.0"
tables:
  users:
    columns:
      - name: id
        type: {kind: DECIMAL, precision: 9999, scale: 2}
    primary_key: [id]
`

func TestValidateCommand(t *testing.T) {
	c := qt.New(t)
	cmd := validate.NewValidateCommand()

	c.Assert(cmd, qt.IsNotNil)
	c.Assert(cmd.Use, qt.Equals, "validate")

	t.Run("valid schema", func(t *testing.T) {
		c := qt.New(t)
		dir := t.TempDir()
		c.Assert(os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(validSchemaYAML), 0o644), qt.IsNil)

		cmd.SetArgs([]string{"--schema-dir", dir})
		c.Assert(cmd.Execute(), qt.IsNil)
	})

	t.Run("invalid schema", func(t *testing.T) {
		c := qt.New(t)
		dir := t.TempDir()
		c.Assert(os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(invalidSchemaYAML), 0o644), qt.IsNil)

		cmd.SetArgs([]string{"--schema-dir", dir})
		err := cmd.Execute()
		c.Assert(err, qt.ErrorMatches, ".*validation error.*")
	})
}
