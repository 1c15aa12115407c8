package migrator_test

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/migration/migrator"
)

func TestNewRegisteredMigrationProvider(t *testing.T) {
	c := qt.New(t)

	provider := migrator.NewRegisteredMigrationProvider()
	c.Assert(provider, qt.IsNotNil)
	c.Assert(provider.Migrations(), qt.HasLen, 0)

	m1 := &migrator.Migration{Version: "20260101000000", Description: "first", Up: migrator.NoopMigrationFunc, Down: migrator.NoopMigrationFunc}
	m2 := &migrator.Migration{Version: "20260102000000", Description: "second", Up: migrator.NoopMigrationFunc, Down: migrator.NoopMigrationFunc}

	provider = migrator.NewRegisteredMigrationProvider(m1, m2)
	c.Assert(provider.Migrations(), qt.HasLen, 2)
}

func TestRegisteredMigrationProviderSortsOnAccess(t *testing.T) {
	c := qt.New(t)

	provider := migrator.NewRegisteredMigrationProvider()

	provider.Register(&migrator.Migration{Version: "20260103000000", Description: "third", Up: migrator.NoopMigrationFunc, Down: migrator.NoopMigrationFunc})
	provider.Register(&migrator.Migration{Version: "20260101000000", Description: "first", Up: migrator.NoopMigrationFunc, Down: migrator.NoopMigrationFunc})
	provider.Register(&migrator.Migration{Version: "20260102000000", Description: "second", Up: migrator.NoopMigrationFunc, Down: migrator.NoopMigrationFunc})

	migrations := provider.Migrations()
	c.Assert(migrations, qt.HasLen, 3)
	c.Assert(migrations[0].Version, qt.Equals, "20260101000000")
	c.Assert(migrations[1].Version, qt.Equals, "20260102000000")
	c.Assert(migrations[2].Version, qt.Equals, "20260103000000")
}

func TestNewDirMigrationProviderLoadsAndSorts(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"20260102000000_add_index/up.sql":   &fstest.MapFile{Data: []byte("CREATE INDEX idx_users_email ON users(email);")},
		"20260102000000_add_index/down.sql": &fstest.MapFile{Data: []byte("DROP INDEX idx_users_email;")},
		"20260102000000_add_index/.meta.yaml": &fstest.MapFile{Data: []byte(
			"version: \"20260102000000\"\ndescription: add index\ndialect: postgres\nchecksum: cafebabe\n",
		)},
		"20260101000000_create_users/up.sql":   &fstest.MapFile{Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY);")},
		"20260101000000_create_users/down.sql": &fstest.MapFile{Data: []byte("DROP TABLE users;")},
		"20260101000000_create_users/.meta.yaml": &fstest.MapFile{Data: []byte(
			"version: \"20260101000000\"\ndescription: create users\ndialect: postgres\nchecksum: deadbeef\n",
		)},
	}

	provider, err := migrator.NewDirMigrationProvider(fsys)
	c.Assert(err, qt.IsNil)

	migrations := provider.Migrations()
	c.Assert(migrations, qt.HasLen, 2)
	c.Assert(migrations[0].Version, qt.Equals, "20260101000000")
	c.Assert(migrations[0].Description, qt.Equals, "create users")
	c.Assert(migrations[0].Checksum, qt.Equals, "deadbeef")
	c.Assert(migrations[1].Version, qt.Equals, "20260102000000")
	c.Assert(migrations[1].Checksum, qt.Equals, "cafebabe")
}

func TestNewDirMigrationProviderWithoutMetaFallsBackToDirName(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"20260101000000_create_users/up.sql":   &fstest.MapFile{Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY);")},
		"20260101000000_create_users/down.sql": &fstest.MapFile{Data: []byte("DROP TABLE users;")},
	}

	provider, err := migrator.NewDirMigrationProvider(fsys)
	c.Assert(err, qt.IsNil)

	migrations := provider.Migrations()
	c.Assert(migrations, qt.HasLen, 1)
	c.Assert(migrations[0].Description, qt.Equals, "create_users")
	c.Assert(migrations[0].Checksum, qt.Equals, "")
}

func TestNewDirMigrationProviderRejectsMalformedDirNames(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"not_a_timestamp/up.sql":   &fstest.MapFile{Data: []byte("SELECT 1;")},
		"not_a_timestamp/down.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	}

	_, err := migrator.NewDirMigrationProvider(fsys)
	c.Assert(err, qt.IsNotNil)
}

func TestNewDirMigrationProviderMissingDownFile(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"20260101000000_create_users/up.sql": &fstest.MapFile{Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY);")},
	}

	_, err := migrator.NewDirMigrationProvider(fsys)
	c.Assert(err, qt.ErrorMatches, ".*down.sql.*")
}

func TestNewDirMigrationProviderEmptyFilesystem(t *testing.T) {
	c := qt.New(t)

	provider, err := migrator.NewDirMigrationProvider(fstest.MapFS{})
	c.Assert(err, qt.IsNil)
	c.Assert(provider.Migrations(), qt.HasLen, 0)
}
