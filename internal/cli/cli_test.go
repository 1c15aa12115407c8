package cli_test

import (
	"os"
	"os/exec"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/internal/cli"
)

// TestExecuteHelp exercises the wired root command directly: --help
// always succeeds, so Execute returns without calling os.Exit.
func TestExecuteHelp(t *testing.T) {
	cli.Execute("--help")
}

// TestExecuteUnknownCommandExitsNonZero runs Execute with a bad
// subcommand in a subprocess, since Execute calls os.Exit(1) on
// error and would otherwise kill the test binary.
func TestExecuteUnknownCommandExitsNonZero(t *testing.T) {
	if os.Getenv("SCHEMAFORGE_CLI_SUBPROCESS") == "1" {
		cli.Execute("not-a-real-subcommand")
		return
	}

	c := qt.New(t)
	cmd := exec.Command(os.Args[0], "-test.run=TestExecuteUnknownCommandExitsNonZero")
	cmd.Env = append(os.Environ(), "SCHEMAFORGE_CLI_SUBPROCESS=1")
	err := cmd.Run()

	exitErr, ok := err.(*exec.ExitError)
	c.Assert(ok, qt.IsTrue, qt.Commentf("expected an *exec.ExitError, got %v", err))
	c.Assert(exitErr.ExitCode(), qt.Equals, 1)
}
