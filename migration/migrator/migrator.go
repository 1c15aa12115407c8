// Package migrator is the apply path's orchestrator: given a
// MigrationProvider and a live dbapply.Conn, it tracks which
// migrations have run (via the connection's history table) and
// applies or reverts the ones that haven't, one transaction per
// migration.
//
// Grounded on ptah's migration/migrator package for the
// Initialize/MigrateUp/MigrateDown/GetMigrationStatus shape and its
// slog-based structured logging, adapted from ptah's integer-version,
// flat-filename model to this engine's string-timestamp,
// directory-per-migration model (§6).
package migrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/schemaforge/schemaforge/dbapply"
)

// MigrationStatus reports the migrator's view of what has and hasn't
// run.
type MigrationStatus struct {
	CurrentVersion    string
	PendingMigrations []string
	TotalMigrations   int
	HasPendingChanges bool
}

// Migrator applies and reverts migrations against a single database
// connection.
type Migrator struct {
	conn              *dbapply.Conn
	migrationProvider MigrationProvider
	initialized       bool
	logger            *slog.Logger
}

// NewMigrator creates a Migrator backed by conn and provider.
func NewMigrator(conn *dbapply.Conn, provider MigrationProvider) *Migrator {
	return &Migrator{
		conn:              conn,
		migrationProvider: provider,
		logger:            slog.Default(),
	}
}

// WithLogger returns a copy of the Migrator logging through l.
func (m *Migrator) WithLogger(l *slog.Logger) *Migrator {
	tmp := *m
	tmp.logger = l
	return &tmp
}

// MigrationProvider returns the migrator's migration source.
func (m *Migrator) MigrationProvider() MigrationProvider {
	return m.migrationProvider
}

// Initialize creates the history table if it doesn't exist yet. Safe
// to call repeatedly.
func (m *Migrator) Initialize(ctx context.Context) error {
	if m.initialized {
		return nil
	}
	if err := m.conn.EnsureHistoryTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration history table: %w", err)
	}
	m.initialized = true
	return nil
}

// GetAppliedMigrations returns every version recorded in the history
// table, ascending.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) ([]string, error) {
	if err := m.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize migration history table: %w", err)
	}
	applied, err := m.conn.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	return applied, nil
}

// GetCurrentVersion returns the most recently applied migration's
// version, or "" if none have been applied.
func (m *Migrator) GetCurrentVersion(ctx context.Context) (string, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return "", err
	}
	if len(applied) == 0 {
		return "", nil
	}
	return applied[len(applied)-1], nil
}

// GetPendingMigrations returns every known migration not yet recorded
// as applied, in the order they'd be applied.
func (m *Migrator) GetPendingMigrations(ctx context.Context) ([]string, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	var pending []string
	for _, migration := range m.migrationProvider.Migrations() {
		if !appliedSet[migration.Version] {
			pending = append(pending, migration.Version)
		}
	}
	return pending, nil
}

// GetPreviousMigrationVersion returns the version applied immediately
// before the current one. Returns an error if no migrations have been
// applied, or if the current one is the first.
func (m *Migrator) GetPreviousMigrationVersion(ctx context.Context) (string, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if len(applied) <= 1 {
		return "", fmt.Errorf("no previous migrations exist")
	}
	return applied[len(applied)-2], nil
}

// GetMigrationStatus summarizes the migrator's current state.
func (m *Migrator) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending migrations: %w", err)
	}

	return &MigrationStatus{
		CurrentVersion:    currentVersion,
		PendingMigrations: pending,
		TotalMigrations:   len(m.migrationProvider.Migrations()),
		HasPendingChanges: len(pending) > 0,
	}, nil
}

// MigrateUp applies every pending migration, in version order.
func (m *Migrator) MigrateUp(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration history table: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}
	pendingSet := make(map[string]bool, len(pending))
	for _, v := range pending {
		pendingSet[v] = true
	}

	migrations := m.migrationProvider.Migrations()
	m.logger.Info("migrating up", "pending", len(pending), "total", len(migrations))

	for _, migration := range migrations {
		if !pendingSet[migration.Version] {
			continue
		}
		if err := m.applyOne(ctx, migration); err != nil {
			return err
		}
	}

	m.logger.Info("all migrations applied successfully")
	return nil
}

// MigrateDown reverts the most recently applied migration.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration history table: %w", err)
	}

	target, err := m.GetPreviousMigrationVersion(ctx)
	if err != nil {
		// No previous version: revert the single applied migration down
		// to the empty state.
		current, currErr := m.GetCurrentVersion(ctx)
		if currErr != nil {
			return fmt.Errorf("failed to get current version: %w", currErr)
		}
		if current == "" {
			m.logger.Info("no migrations applied, nothing to revert")
			return nil
		}
		return m.MigrateDownTo(ctx, "")
	}

	return m.MigrateDownTo(ctx, target)
}

// MigrateDownTo reverts applied migrations newer than targetVersion,
// most recent first, until exactly the migrations at or before
// targetVersion remain applied. Pass "" to revert every migration.
func (m *Migrator) MigrateDownTo(ctx context.Context, targetVersion string) error {
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration history table: %w", err)
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	migrations := append([]*Migration(nil), m.migrationProvider.Migrations()...)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version > migrations[j].Version
	})

	m.logger.Info("migrating down", "targetVersion", targetVersion, "applied", len(applied))

	for _, migration := range migrations {
		if !appliedSet[migration.Version] || migration.Version <= targetVersion {
			continue
		}
		if err := m.revertOne(ctx, migration); err != nil {
			return err
		}
	}

	m.logger.Info("migrations rolled back successfully", "targetVersion", targetVersion)
	return nil
}

// MigrateTo applies or reverts migrations until exactly targetVersion
// is the current version.
func (m *Migrator) MigrateTo(ctx context.Context, targetVersion string) error {
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration history table: %w", err)
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if targetVersion == currentVersion {
		m.logger.Info("already at target version", "version", targetVersion)
		return nil
	}

	if targetVersion > currentVersion {
		return m.migrateUpTo(ctx, targetVersion)
	}
	return m.MigrateDownTo(ctx, targetVersion)
}

func (m *Migrator) migrateUpTo(ctx context.Context, targetVersion string) error {
	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}
	pendingSet := make(map[string]bool, len(pending))
	for _, v := range pending {
		pendingSet[v] = true
	}

	for _, migration := range m.migrationProvider.Migrations() {
		if !pendingSet[migration.Version] || migration.Version > targetVersion {
			continue
		}
		if err := m.applyOne(ctx, migration); err != nil {
			return err
		}
	}

	m.logger.Info("migrated successfully", "targetVersion", targetVersion)
	return nil
}

func (m *Migrator) applyOne(ctx context.Context, migration *Migration) error {
	m.logger.Info("applying migration", "version", migration.Version, "description", migration.Description)

	if err := migration.Up(ctx, m.conn); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
	}
	if err := m.conn.RecordApplied(ctx, migration.Version, migration.Description, migration.Checksum); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}

	m.logger.Info("applied migration", "version", migration.Version, "description", migration.Description)
	return nil
}

func (m *Migrator) revertOne(ctx context.Context, migration *Migration) error {
	m.logger.Info("rolling back migration", "version", migration.Version, "description", migration.Description)

	if err := migration.Down(ctx, m.conn); err != nil {
		return fmt.Errorf("failed to revert migration %s: %w", migration.Version, err)
	}
	if err := m.conn.RemoveApplied(ctx, migration.Version); err != nil {
		return fmt.Errorf("failed to record reversion of migration %s: %w", migration.Version, err)
	}

	m.logger.Info("rolled back migration", "version", migration.Version, "description", migration.Description)
	return nil
}
