// Package config provides configuration options for the schemaforge
// migration engine.
//
// This package provides a simple, programmatic API for configuring
// migration generation behavior when using schemaforge as a library.
// It focuses on providing clean Go APIs rather than external
// configuration file management — the CLI layer (cmd/schemaforge)
// layers environment-variable overrides on top via viper.
package config

import "github.com/schemaforge/schemaforge/sql/dialect"

// GenerateOptions contains configuration options for the migration
// generation operation (§2 data flow). These options gate the
// Destructive-Change Analyzer's output and select the target SQL
// dialect backend.
type GenerateOptions struct {
	// AllowDestructive permits the pipeline to emit SQL for changes the
	// Destructive-Change Analyzer classifies as destructive (dropped
	// tables/columns, narrowing type changes, NOT NULL additions on a
	// nullable column, enum Recreate). Without it, the pipeline fails
	// fast and names the offending change (§4.4).
	AllowDestructive bool

	// Dialect selects the SQL backend used for rendering (§4.5).
	Dialect dialect.Name

	// MigrationsDir is the directory migration artifacts are written
	// under, relative to the project root.
	MigrationsDir string
}

// DefaultGenerateOptions returns the default generation options: no
// destructive changes permitted, PostgreSQL as the target dialect, and
// migrations written under "migrations".
func DefaultGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		AllowDestructive: false,
		Dialect:          dialect.PostgreSQL,
		MigrationsDir:    "migrations",
	}
}

// WithDialect returns a new GenerateOptions targeting the given
// dialect, otherwise matching the defaults.
//
// Example:
//
//	opts := config.WithDialect(dialect.SQLite)
func WithDialect(name dialect.Name) *GenerateOptions {
	opts := DefaultGenerateOptions()
	opts.Dialect = name
	return opts
}

// WithAllowDestructive returns a new GenerateOptions with
// AllowDestructive set to allow, otherwise matching the defaults.
//
// Example:
//
//	opts := config.WithAllowDestructive(true)
func WithAllowDestructive(allow bool) *GenerateOptions {
	opts := DefaultGenerateOptions()
	opts.AllowDestructive = allow
	return opts
}
