package cmd

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"
)

//go:embed language.md
var languageReference string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the testlang language reference",
	Long:  "Print a compact reference of the testlang syntax, substitution rules and code generation targets.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), languageReference)
	},
}
