// Package generate wires the migration/generator package to a cobra
// subcommand, mirroring ptah's cmd/generate flag-registration idiom
// (cobraflags.RegisterMap) adapted from Go-entity scanning to this
// engine's YAML schema directory.
package generate

import (
	"fmt"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/schemaforge/schemaforge/config"
	"github.com/schemaforge/schemaforge/migration/generator"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a migration from the current schema directory",
	Long: `Generate diffs the schema files under --schema-dir against the most
recently generated migration's snapshot, renders the result for the
target dialect, and writes a new timestamped migration directory under
--migrations-dir.

Destructive changes (dropped tables/columns, narrowing type changes,
new NOT NULL constraints on a nullable column, enum recreate) are
refused unless --allow-destructive is passed.`,
	RunE: runGenerate,
}

const (
	schemaDirFlag       = "schema-dir"
	migrationsDirFlag   = "migrations-dir"
	descriptionFlag     = "description"
	dialectFlag         = "dialect"
	allowDestructveFlag = "allow-destructive"
)

var generateFlags = map[string]cobraflags.Flag{
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
	descriptionFlag: &cobraflags.StringFlag{
		Name:  descriptionFlag,
		Value: "",
		Usage: "Free-form description for the migration directory name (required)",
	},
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "postgres",
		Usage: "Target SQL dialect: postgres, mysql, or sqlite",
	},
	allowDestructveFlag: &cobraflags.BoolFlag{
		Name:  allowDestructveFlag,
		Value: false,
		Usage: "Permit destructive changes to be rendered",
	},
}

// NewGenerateCommand builds the generate subcommand.
func NewGenerateCommand() *cobra.Command {
	cobraflags.RegisterMap(generateCmd, generateFlags)
	return generateCmd
}

func runGenerate(_ *cobra.Command, _ []string) error {
	description := generateFlags[descriptionFlag].GetString()
	if description == "" {
		return fmt.Errorf("--description is required")
	}

	opts := config.WithDialect(dialect.Name(generateFlags[dialectFlag].GetString()))
	opts.MigrationsDir = generateFlags[migrationsDirFlag].GetString()
	opts.AllowDestructive = generateFlags[allowDestructveFlag].GetBool()

	files, err := generator.Generate(generateFlags[schemaDirFlag].GetString(), description, time.Now(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Generated migration %s\n", files.Version)
	fmt.Printf("  %s\n", files.Dir)
	if files.Report.IsDestructive() {
		fmt.Println("  contains destructive changes:")
		for _, item := range files.Report.Items {
			fmt.Printf("    - %s\n", item.Description)
		}
	}

	return nil
}
