package migrator

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// MigrationProvider supplies the ordered list of migrations the
// Migrator applies or reverts.
type MigrationProvider interface {
	// Migrations returns every known migration, sorted by Version in
	// ascending (chronological) order.
	Migrations() []*Migration
}

// RegisteredMigrationProvider is a simple in-memory MigrationProvider,
// useful for programmatically constructed migrations in tests and for
// embedding a fixed migration set in a binary.
type RegisteredMigrationProvider struct {
	migrations []*Migration
	sorted     bool
}

// NewRegisteredMigrationProvider creates an in-memory provider seeded
// with migrations. They're sorted by Version the first time
// Migrations is called.
func NewRegisteredMigrationProvider(migrations ...*Migration) *RegisteredMigrationProvider {
	return &RegisteredMigrationProvider{migrations: migrations}
}

// Register appends a migration to the provider.
func (p *RegisteredMigrationProvider) Register(migration *Migration) {
	p.migrations = append(p.migrations, migration)
	p.sorted = false
}

// Migrations returns the registered migrations sorted by Version.
func (p *RegisteredMigrationProvider) Migrations() []*Migration {
	if !p.sorted {
		sortMigrations(p.migrations)
		p.sorted = true
	}
	return p.migrations
}

// meta mirrors the .meta.yaml artifact (§6): { version, description,
// dialect, checksum, destructive_report? }.
type meta struct {
	Version           string `yaml:"version"`
	Description       string `yaml:"description"`
	Dialect           string `yaml:"dialect"`
	Checksum          string `yaml:"checksum"`
	DestructiveReport any    `yaml:"destructive_report,omitempty"`
}

// DirMigrationProvider loads migrations from a filesystem laid out per
// §6: one subdirectory per migration, named
// "<timestamp>_<sanitized_description>", each containing up.sql,
// down.sql, and .meta.yaml. fsys is rooted at the migrations
// directory itself (pass os.DirFS(dir) for a directory on disk).
//
// Grounded on ptah's FSMigrationProvider for the fs.FS-scan shape,
// adapted from its flat NNNNNNNNNN_description.up.sql filename
// convention to one migration per directory, since that's this
// engine's generated artifact layout.
type DirMigrationProvider struct {
	fsys       fs.FS
	migrations []*Migration
}

// NewDirMigrationProvider scans fsys for migration directories and
// loads each one. Returns an error if a directory's name doesn't match
// the expected pattern, or if up.sql or down.sql is missing.
func NewDirMigrationProvider(fsys fs.FS) (*DirMigrationProvider, error) {
	p := &DirMigrationProvider{fsys: fsys}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Migrations returns the migrations loaded from disk, sorted by
// Version.
func (p *DirMigrationProvider) Migrations() []*Migration {
	return p.migrations
}

func (p *DirMigrationProvider) load() error {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return fmt.Errorf("migrator: scanning migrations directory: %w", err)
	}

	var migrations []*Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		timestamp, description, err := ParseMigrationDirName(entry.Name())
		if err != nil {
			return fmt.Errorf("migrator: %w", err)
		}

		m, err := p.loadOne(entry.Name(), timestamp, description)
		if err != nil {
			return fmt.Errorf("migrator: loading migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, m)
	}

	sortMigrations(migrations)
	p.migrations = migrations
	return nil
}

func (p *DirMigrationProvider) loadOne(dir, timestamp, fallbackDescription string) (*Migration, error) {
	upSQL, err := fs.ReadFile(p.fsys, path.Join(dir, "up.sql"))
	if err != nil {
		return nil, fmt.Errorf("reading up.sql: %w", err)
	}
	downSQL, err := fs.ReadFile(p.fsys, path.Join(dir, "down.sql"))
	if err != nil {
		return nil, fmt.Errorf("reading down.sql: %w", err)
	}

	description := fallbackDescription
	checksum := ""
	if metaBytes, err := fs.ReadFile(p.fsys, path.Join(dir, ".meta.yaml")); err == nil {
		var m meta
		if err := yaml.Unmarshal(metaBytes, &m); err != nil {
			return nil, fmt.Errorf("parsing .meta.yaml: %w", err)
		}
		if m.Description != "" {
			description = m.Description
		}
		checksum = m.Checksum
	}

	return CreateMigrationFromSQL(timestamp, description, checksum, string(upSQL), string(downSQL)), nil
}

func sortMigrations(migrations []*Migration) {
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
}
