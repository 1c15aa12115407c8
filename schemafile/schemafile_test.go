package schemafile_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/schemafile"
)

const usersYAML = `
version: "1.0"
tables:
  users:
    columns:
      - name: id
        type: { kind: INTEGER }
        nullable: false
        auto_increment: true
      - name: email
        type: { kind: VARCHAR, length: 255 }
        nullable: false
      - name: role
        type: { kind: ENUM, name: user_role }
        nullable: false
    primary_key: [id]
    indexes:
      - name: idx_users_email
        columns: [email]
        unique: true
    constraints:
      - type: UNIQUE
        columns: [email]
enums:
  user_role:
    name: user_role
    values: [admin, member]
`

func TestParseBuildsSchema(t *testing.T) {
	c := qt.New(t)

	s, err := schemafile.Parse([]byte(usersYAML))
	c.Assert(err, qt.IsNil)
	c.Assert(s.Version, qt.Equals, "1.0")

	users := s.Tables["users"]
	c.Assert(users, qt.IsNotNil)
	c.Assert(users.Columns, qt.HasLen, 3)

	id := users.Column("id")
	c.Assert(id.AutoIncrement, qt.IsTrue)
	c.Assert(id.Nullable, qt.IsFalse)

	role := users.Column("role")
	c.Assert(role.Type.Kind, qt.Equals, schema.KindEnum)
	c.Assert(role.Type.EnumName, qt.Equals, "user_role")

	pk := users.PrimaryKey()
	c.Assert(pk, qt.IsNotNil)
	c.Assert(pk.Columns, qt.DeepEquals, []string{"id"})

	c.Assert(s.Enums["user_role"].Values, qt.DeepEquals, []string{"admin", "member"})
}

func TestConstraintsRejectInlinePrimaryKey(t *testing.T) {
	c := qt.New(t)

	const bad = `
version: "1.0"
tables:
  t:
    columns:
      - name: id
        type: { kind: INTEGER }
        nullable: false
    constraints:
      - type: PRIMARY_KEY
        columns: [id]
`
	_, err := schemafile.Parse([]byte(bad))
	c.Assert(err, qt.ErrorMatches, ".*PRIMARY_KEY must not appear under constraints.*")
}

func TestLoadDirectoryMergesFilesInSortedOrder(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "a_users.yaml"), []byte(`
version: "1.0"
tables:
  users:
    columns:
      - name: id
        type: { kind: INTEGER }
        nullable: false
`), 0o644), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "b_posts.yaml"), []byte(`
version: "1.0"
tables:
  posts:
    columns:
      - name: id
        type: { kind: INTEGER }
        nullable: false
`), 0o644), qt.IsNil)

	s, err := schemafile.LoadDirectory(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(s.TableNames(), qt.DeepEquals, []string{"posts", "users"})
}

func TestLoadDirectoryEmptyYieldsEmptySchema(t *testing.T) {
	c := qt.New(t)

	s, err := schemafile.LoadDirectory(t.TempDir())
	c.Assert(err, qt.IsNil)
	c.Assert(s.Version, qt.Equals, "1.0")
	c.Assert(s.TableNames(), qt.HasLen, 0)
}
