package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/schemaforge/schemaforge/config"
	"github.com/schemaforge/schemaforge/core/destructive"
	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/core/validate"
	"github.com/schemaforge/schemaforge/migration/migrator"
	"github.com/schemaforge/schemaforge/migration/pipeline"
	"github.com/schemaforge/schemaforge/migration/snapshot"
	"github.com/schemaforge/schemaforge/schemafile"
	"github.com/schemaforge/schemaforge/sql/dialect"

	_ "github.com/schemaforge/schemaforge/sql/dialect/mysql"
	_ "github.com/schemaforge/schemaforge/sql/dialect/postgres"
	_ "github.com/schemaforge/schemaforge/sql/dialect/sqlite"
)

// maxDecimalPrecision is the DECIMAL precision bound the Validator
// enforces across all three supported dialects today (§4.3).
const maxDecimalPrecision = 65

// MigrationFiles describes what Generate wrote to disk.
type MigrationFiles struct {
	// Dir is the migration's directory, e.g.
	// "migrations/20260115093000_add_users_table".
	Dir string
	// Version is Dir's base name: the timestamp-prefixed, sanitized
	// description (§6).
	Version string
	// Report is the destructive-change analysis for this migration,
	// the same content written into .meta.yaml's destructive_report.
	Report *destructive.Report
}

// Generate runs the full pipeline (§2): it loads the desired schema
// from schemaDir, loads the previously committed snapshot from the
// most recent migration under opts.MigrationsDir (or starts from an
// empty schema if there are none yet), validates, diffs, classifies
// destructive changes, renders dialect-specific SQL for both
// directions, and writes the resulting migration artifacts
// (up.sql, down.sql, .meta.yaml, .schema_snapshot.yaml) into a new
// "<timestamp>_<sanitized description>" directory.
//
// now is passed in rather than read from time.Now() so that callers
// (and tests) control the generated directory name.
func Generate(schemaDir, description string, now time.Time, opts *config.GenerateOptions) (*MigrationFiles, error) {
	if opts == nil {
		opts = config.DefaultGenerateOptions()
	}

	next, err := schemafile.LoadDirectory(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("generator: loading schema: %w", err)
	}

	prev, err := loadPreviousSchema(opts.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("generator: loading previous snapshot: %w", err)
	}

	limits := validate.DialectLimits{MaxDecimalPrecision: maxDecimalPrecision}
	if result := validate.Validate(next, limits); !result.OK() {
		return nil, fmt.Errorf("generator: schema validation failed: %w", firstValidationError(result))
	}

	d := diff.Compare(prev, next)

	report := destructive.Analyze(d)
	if err := checkDestructiveGate(report, d, next, opts.AllowDestructive); err != nil {
		return nil, err
	}

	backend := dialect.For(opts.Dialect)
	if backend == nil {
		return nil, fmt.Errorf("generator: unsupported dialect %q", opts.Dialect)
	}

	upPlan, err := pipeline.Build(d, next, backend)
	if err != nil {
		return nil, fmt.Errorf("generator: building up migration: %w", err)
	}
	downPlan, err := pipeline.BuildDown(d, prev, backend)
	if err != nil {
		return nil, fmt.Errorf("generator: building down migration: %w", err)
	}

	checksum, err := snapshot.Checksum(next)
	if err != nil {
		return nil, fmt.Errorf("generator: computing snapshot checksum: %w", err)
	}
	snapshotYAML, err := snapshot.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("generator: marshaling snapshot: %w", err)
	}

	version := fmt.Sprintf("%s_%s", now.UTC().Format("20060102150405"), sanitizeDescription(description))
	dir := filepath.Join(opts.MigrationsDir, version)

	if err := writeArtifacts(dir, version, description, string(opts.Dialect), checksum, upPlan, downPlan, report, snapshotYAML); err != nil {
		return nil, err
	}

	return &MigrationFiles{Dir: dir, Version: version, Report: report}, nil
}

// checkDestructiveGate fails fast (§4.4) unless every destructive
// finding has been explicitly permitted: allowDestructive for the
// general case, plus next.EnumRecreateAllowed specifically for an
// enum Recreate.
func checkDestructiveGate(report *destructive.Report, d *diff.SchemaDiff, next *schema.Schema, allowDestructive bool) error {
	for _, item := range report.Items {
		if item.Kind == destructive.EnumRecreate && !next.EnumRecreateAllowed {
			return fmt.Errorf("generator: %s (enum_recreate_allowed is false)", item.Description)
		}
		if !allowDestructive {
			return fmt.Errorf("generator: destructive change refused (pass --allow-destructive to permit): %s", item.Description)
		}
	}
	return nil
}

func firstValidationError(r *validate.Result) error {
	if len(r.Errors) == 0 {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%d validation errors: %s", len(r.Errors), strings.Join(msgs, "; "))
}

// loadPreviousSchema reads the .schema_snapshot.yaml of the most
// recently generated migration under migrationsDir, or returns a
// fresh, empty schema if no migrations exist yet.
func loadPreviousSchema(migrationsDir string) (*schema.Schema, error) {
	entries, err := os.ReadDir(migrationsDir)
	if os.IsNotExist(err) {
		return schema.NewSchema("1.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning migrations directory: %w", err)
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, _, err := migrator.ParseMigrationDirName(entry.Name()); err == nil {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return schema.NewSchema("1.0"), nil
	}
	sort.Strings(versions)
	latest := versions[len(versions)-1]

	snapshotPath := filepath.Join(migrationsDir, latest, ".schema_snapshot.yaml")
	b, err := os.ReadFile(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", snapshotPath, err)
	}
	return snapshot.Unmarshal(b)
}

// sanitizeDescription normalizes a free-form migration description
// into the directory-safe token spec.md §6 names: lowercased (via
// golang.org/x/text/cases for Unicode-aware casing, not a simple ASCII
// lowercase), non-alphanumeric runs collapsed to a single underscore,
// leading/trailing underscores trimmed.
func sanitizeDescription(description string) string {
	lowered := cases.Lower(language.Und).String(description)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	result := strings.Trim(b.String(), "_")
	if result == "" {
		result = "migration"
	}
	return result
}

func writeArtifacts(dir, version, description, dialectName, checksum string, upPlan, downPlan *pipeline.Plan, report *destructive.Report, snapshotYAML []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: creating migration directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "up.sql"), []byte(renderStatements(upPlan.Statements)), 0o644); err != nil {
		return fmt.Errorf("generator: writing up.sql: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "down.sql"), []byte(renderStatements(downPlan.Statements)), 0o644); err != nil {
		return fmt.Errorf("generator: writing down.sql: %w", err)
	}

	metaYAML, err := renderMeta(version, description, dialectName, checksum, report)
	if err != nil {
		return fmt.Errorf("generator: rendering .meta.yaml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".meta.yaml"), metaYAML, 0o644); err != nil {
		return fmt.Errorf("generator: writing .meta.yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".schema_snapshot.yaml"), snapshotYAML, 0o644); err != nil {
		return fmt.Errorf("generator: writing .schema_snapshot.yaml: %w", err)
	}

	return nil
}

func renderStatements(statements []string) string {
	var b strings.Builder
	for _, stmt := range statements {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return b.String()
}
