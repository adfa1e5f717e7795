package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

var tokensJSONFlag bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the token stream of a testlang file",
	Long: `Tokenize a testlang file and print every token with its position.

Examples:
  testlangc tokens api.tl
  testlangc tokens api.tl --json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: tokensCommand,
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensJSONFlag, "json", false, "Print tokens as JSON")
}

type tokenView struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Value  string `json:"value,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func tokensCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	lexer := parser.NewLexer(string(data))
	lexer.SetFile(args[0])
	tokens, warnings, err := lexer.All()
	for _, w := range warnings {
		printWarning(cmd.ErrOrStderr(), "%s: %s", args[0], w.String())
	}
	if err != nil {
		return err
	}

	if tokensJSONFlag {
		views := make([]tokenView, 0, len(tokens))
		for _, tok := range tokens {
			v := tokenView{Type: tok.Type.String(), Text: tok.Text, Line: tok.Line, Column: tok.Column}
			if tok.Value != tok.Text {
				v.Value = tok.Value
			}
			views = append(views, v)
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, tok := range tokens {
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Text)
	}
	return tw.Flush()
}
