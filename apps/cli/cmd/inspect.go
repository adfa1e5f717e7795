package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

var (
	inspectFormatFlag string
	inspectQueryFlag  string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the syntax tree of a testlang file",
	Long: `Parse a testlang file and print its syntax tree as JSON or YAML.

--query selects part of the tree with a gjson path.

Examples:
  testlangc inspect api.tl
  testlangc inspect api.tl --format yaml
  testlangc inspect api.tl --query 'tests.#.name'
  testlangc inspect api.tl --query 'config.baseUrl'`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: inspectCommand,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormatFlag, "format", "f", "json", "Output format: json, yaml")
	inspectCmd.Flags().StringVarP(&inspectQueryFlag, "query", "q", "", "gjson path selecting part of the tree")
}

type unitView struct {
	File      string         `json:"file,omitempty" yaml:"file,omitempty"`
	Config    *configView    `json:"config,omitempty" yaml:"config,omitempty"`
	Variables []variableView `json:"variables" yaml:"variables"`
	Tests     []testView     `json:"tests" yaml:"tests"`
}

type configView struct {
	BaseURL string       `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Headers []headerView `json:"headers,omitempty" yaml:"headers,omitempty"`
	Line    int          `json:"line" yaml:"line"`
}

type headerView struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type variableView struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	String bool   `json:"string" yaml:"string"`
	Line   int    `json:"line" yaml:"line"`
}

type testView struct {
	Name       string          `json:"name" yaml:"name"`
	Line       int             `json:"line" yaml:"line"`
	Requests   []requestView   `json:"requests" yaml:"requests"`
	Assertions []assertionView `json:"assertions" yaml:"assertions"`
}

type requestView struct {
	Method  string       `json:"method" yaml:"method"`
	Path    string       `json:"path" yaml:"path"`
	Headers []headerView `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    *string      `json:"body,omitempty" yaml:"body,omitempty"`
	Line    int          `json:"line" yaml:"line"`
}

type assertionView struct {
	Kind   string `json:"kind" yaml:"kind"`
	Status int    `json:"status,omitempty" yaml:"status,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Line   int    `json:"line" yaml:"line"`
}

func headerViews(m *parser.OrderedMap[string]) []headerView {
	if m == nil {
		return nil
	}
	var out []headerView
	m.Each(func(name, value string) {
		out = append(out, headerView{Name: name, Value: value})
	})
	return out
}

func newUnitView(file string, unit *parser.CompilationUnit) *unitView {
	v := &unitView{File: file, Variables: []variableView{}, Tests: []testView{}}

	if unit.Config != nil {
		cv := &configView{Headers: headerViews(unit.Config.DefaultHeaders), Line: unit.Config.Line}
		if unit.Config.BaseURL != nil {
			cv.BaseURL = *unit.Config.BaseURL
		}
		v.Config = cv
	}

	if unit.Variables != nil {
		unit.Variables.Each(func(_ string, variable *parser.Variable) {
			v.Variables = append(v.Variables, variableView{
				Name:   variable.Name,
				Value:  variable.Value,
				String: variable.IsString,
				Line:   variable.Line,
			})
		})
	}

	for _, tc := range unit.TestCases {
		tv := testView{Name: tc.Name, Line: tc.Line, Requests: []requestView{}, Assertions: []assertionView{}}
		for _, r := range tc.Requests {
			tv.Requests = append(tv.Requests, requestView{
				Method:  string(r.Method),
				Path:    r.Path,
				Headers: headerViews(r.Headers),
				Body:    r.Body,
				Line:    r.Line,
			})
		}
		for _, a := range tc.Assertions {
			tv.Assertions = append(tv.Assertions, assertionView{
				Kind:   a.Kind.String(),
				Status: a.Status,
				Name:   a.Name,
				Value:  a.Value,
				Line:   a.Line,
			})
		}
		v.Tests = append(v.Tests, tv)
	}
	return v
}

func inspectCommand(cmd *cobra.Command, args []string) error {
	if inspectFormatFlag != "json" && inspectFormatFlag != "yaml" {
		return usageError("unknown format %q (expected json or yaml)", inspectFormatFlag)
	}

	unit, warnings, err := parseSource(compiler.New(compiler.Options{}), args[0])
	for _, w := range warnings {
		printWarning(cmd.ErrOrStderr(), "%s", w.String())
	}
	if err != nil {
		return err
	}

	data, err := json.Marshal(newUnitView(args[0], unit))
	if err != nil {
		return err
	}

	if inspectQueryFlag != "" {
		result := gjson.GetBytes(data, inspectQueryFlag)
		if !result.Exists() {
			return fmt.Errorf("query %q matched nothing", inspectQueryFlag)
		}
		data = []byte(result.Raw)
	}

	return writeTree(cmd, data)
}

// writeTree prints a JSON document in the selected format.
func writeTree(cmd *cobra.Command, data []byte) error {
	w := cmd.OutOrStdout()

	if inspectFormatFlag == "yaml" {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return err
		}
		return encoder.Close()
	}

	result := gjson.ParseBytes(data)
	if result.Type == gjson.String {
		_, err := fmt.Fprintln(w, result.String())
		return err
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(gjson.Get(result.Raw, "@pretty").Raw, "\n"))
	return err
}
