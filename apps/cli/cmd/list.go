package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List all tests in testlang files",
	Long: `List the test cases defined in .tl files with their request and
assertion counts.

Examples:
  testlangc list api.tl
  testlangc list ./tests/`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	c := compiler.New(compiler.Options{})
	w := cmd.OutOrStdout()
	var firstErr error

	for _, file := range files {
		unit, _, err := parseSource(c, file)
		if err != nil {
			reportError(cmd.ErrOrStderr(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		fmt.Fprintf(w, "\n%s\n", render(fileStyle, file))
		if len(unit.TestCases) == 0 {
			fmt.Fprintf(w, "  %s\n", render(countStyle, "(no tests)"))
			continue
		}

		nameWidth := 0
		for _, tc := range unit.TestCases {
			if n := lipgloss.Width(tc.Name); n > nameWidth {
				nameWidth = n
			}
		}

		for _, tc := range unit.TestCases {
			counts := fmt.Sprintf("%d %s, %d %s  line %d",
				len(tc.Requests), plural(len(tc.Requests), "request"),
				len(tc.Assertions), plural(len(tc.Assertions), "assertion"),
				tc.Line)
			fmt.Fprintf(w, "  %s  %s\n", render(nameStyle, pad(tc.Name, nameWidth)), render(countStyle, counts))
		}
	}

	if firstErr != nil {
		return &ExitError{Code: exitCode(firstErr)}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
