// Package check runs a dry-run generation: diff plus destructive
// report, no files written. Grounded on
// original_source/src/cli/src/cli/commands/check.rs's command shape,
// the CLI-side composition SPEC_FULL.md's supplemented-features
// section describes, reusing already-specified core operations rather
// than introducing new semantics.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/schemaforge/schemaforge/core/destructive"
	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/migration/migrator"
	"github.com/schemaforge/schemaforge/migration/snapshot"
	"github.com/schemaforge/schemaforge/schemafile"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report what the next generate would produce, without writing anything",
	Long: `Loads the schema files under --schema-dir and the previous migration's
snapshot under --migrations-dir, diffs them, and prints a summary of
the changes and any destructive findings. No migration files are
written; this is the same diff+analyze stage generate runs before
rendering SQL.`,
	RunE: runCheck,
}

const (
	schemaDirFlag     = "schema-dir"
	migrationsDirFlag = "migrations-dir"
)

var checkFlags = map[string]cobraflags.Flag{
	schemaDirFlag: &cobraflags.StringFlag{
		Name:  schemaDirFlag,
		Value: "schema",
		Usage: "Directory containing the .yaml/.yml schema files",
	},
	migrationsDirFlag: &cobraflags.StringFlag{
		Name:  migrationsDirFlag,
		Value: "migrations",
		Usage: "Directory migration artifacts are written under",
	},
}

// NewCheckCommand builds the check subcommand.
func NewCheckCommand() *cobra.Command {
	cobraflags.RegisterMap(checkCmd, checkFlags)
	return checkCmd
}

func runCheck(_ *cobra.Command, _ []string) error {
	next, err := schemafile.LoadDirectory(checkFlags[schemaDirFlag].GetString())
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	prev, err := loadPreviousSchema(checkFlags[migrationsDirFlag].GetString())
	if err != nil {
		return fmt.Errorf("loading previous snapshot: %w", err)
	}

	d := diff.Compare(prev, next)
	report := destructive.Analyze(d)

	if len(d.ModifiedTables) == 0 && len(d.AddedTables) == 0 && len(d.RemovedTables) == 0 &&
		len(d.AddedEnums) == 0 && len(d.RemovedEnums) == 0 && len(d.ModifiedEnums) == 0 {
		fmt.Println("no changes")
		return nil
	}

	for _, t := range d.AddedTables {
		fmt.Printf("+ table %s\n", t.Name)
	}
	for _, name := range d.RemovedTables {
		fmt.Printf("- table %s\n", name)
	}
	for _, tc := range d.ModifiedTables {
		fmt.Printf("~ table %s\n", tc.TableName)
	}

	if report.IsDestructive() {
		fmt.Println("\ndestructive changes:")
		for _, item := range report.Items {
			fmt.Printf("  - %s\n", item.Description)
		}
	}

	return nil
}

// loadPreviousSchema mirrors migration/generator's private helper of
// the same name; kept separate since the CLI's check command needs it
// without running generate's destructive gate or writing any files.
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

	b, err := os.ReadFile(filepath.Join(migrationsDir, latest, ".schema_snapshot.yaml"))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return snapshot.Unmarshal(b)
}
