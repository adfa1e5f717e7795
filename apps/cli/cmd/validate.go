package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate testlang files for syntax errors",
	Long: `Validate testlang files for syntax errors without generating code.

Examples:
  testlangc validate api.tl
  testlangc validate ./tests/`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	c := compiler.New(compiler.Options{})
	var firstErr error
	for _, file := range files {
		_, warnings, err := parseSource(c, file)
		for _, w := range warnings {
			printWarning(cmd.ErrOrStderr(), "%s", w.String())
		}
		if err != nil {
			reportError(cmd.ErrOrStderr(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if firstErr != nil {
		return &ExitError{Code: exitCode(firstErr)}
	}
	return nil
}
