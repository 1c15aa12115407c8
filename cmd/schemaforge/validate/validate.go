// Package validate runs the Validator over a schema directory and
// prints its errors/warnings, the CLI-side composition
// SPEC_FULL.md's supplemented-features section describes: grounded on
// original_source's src/cli/src/cli/commands/validate.rs command shape
// but expressed with this module's own cobraflags-registered cobra
// command, ptah's idiom throughout cmd/.
package validate

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/schemaforge/schemaforge/core/validate"
	"github.com/schemaforge/schemaforge/schemafile"
)

const maxDecimalPrecision = 65

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the schema files under --schema-dir",
	Long: `Loads the YAML schema files under --schema-dir and runs the Validator
over the result, printing every fatal error and non-fatal warning. Exits
with a non-nil error if any fatal finding is present.`,
	RunE: runValidate,
}

const schemaDirFlag = "schema-dir"

var validateFlags = map[string]cobraflags.Flag{
	schemaDirFlag: &cobraflags.StringFlag{
		Name:  schemaDirFlag,
		Value: "schema",
		Usage: "Directory containing the .yaml/.yml schema files",
	},
}

// NewValidateCommand builds the validate subcommand.
func NewValidateCommand() *cobra.Command {
	cobraflags.RegisterMap(validateCmd, validateFlags)
	return validateCmd
}

func runValidate(_ *cobra.Command, _ []string) error {
	s, err := schemafile.LoadDirectory(validateFlags[schemaDirFlag].GetString())
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	result := validate.Validate(s, validate.DialectLimits{MaxDecimalPrecision: maxDecimalPrecision})

	for _, w := range result.Warnings {
		fmt.Printf("warning: %s: %s\n", w.Location, w.Message)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %s\n", e.Error())
	}

	if !result.OK() {
		return fmt.Errorf("schema has %d validation error(s)", len(result.Errors))
	}
	fmt.Println("schema is valid")
	return nil
}
