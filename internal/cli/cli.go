// Package cli assembles the schemaforge CLI's root command, mirroring
// ptah's cmd/packagemigrator/packagemigrator.go shape: a root cobra
// command with no behavior of its own beyond printing help, a fixed
// viper environment-variable prefix applied once in Execute, and one
// AddCommand call per subcommand package. cmd/schemaforge/main.go is
// the only caller.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemaforge/schemaforge/cmd/schemaforge/check"
	"github.com/schemaforge/schemaforge/cmd/schemaforge/generate"
	"github.com/schemaforge/schemaforge/cmd/schemaforge/migratedown"
	"github.com/schemaforge/schemaforge/cmd/schemaforge/migratestatus"
	"github.com/schemaforge/schemaforge/cmd/schemaforge/migrateup"
	"github.com/schemaforge/schemaforge/cmd/schemaforge/validate"
)

const envPrefix = "SCHEMAFORGE"

var rootCmd = &cobra.Command{
	Use:   "schemaforge",
	Short: "Declarative database schema migration engine",
	Long: `schemaforge turns a directory of YAML schema files into versioned,
checksummed migration directories, and applies or reverts them against
a live database.

It supports PostgreSQL, MySQL, and SQLite, and refuses to render
destructive SQL unless explicitly permitted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute adds every subcommand to the root command and runs it. Called
// once from main.main.
func Execute(args ...string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	rootCmd.SetArgs(args)
	rootCmd.AddCommand(generate.NewGenerateCommand())
	rootCmd.AddCommand(migrateup.NewMigrateUpCommand())
	rootCmd.AddCommand(migratedown.NewMigrateDownCommand())
	rootCmd.AddCommand(migratestatus.NewMigrateStatusCommand())
	rootCmd.AddCommand(validate.NewValidateCommand())
	rootCmd.AddCommand(check.NewCheckCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1) //revive:disable-line:deep-exit
	}
}
