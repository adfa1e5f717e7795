package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
	"github.com/abdul-hamid-achik/testlang/packages/http"
)

// maxBodyLines bounds the response body echoed under a failed test in
// verbose mode.
const maxBodyLines = 20

// formatValue formats a value for display, truncating long values
func formatValue(v any, maxLen int) string {
	var str string
	if s, ok := v.(string); ok {
		str = fmt.Sprintf("%q", s)
	} else {
		str = fmt.Sprintf("%v", v)
	}
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type palette struct {
	pass, fail, skip, dim, bold *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		skip: color.New(color.FgYellow),
		dim:  color.New(color.FgCyan),
		bold: color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.pass, p.fail, p.skip, p.dim, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

// ConsoleFormatter prints one block per source file as results arrive.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	colors  palette
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.colors = newPalette(f.noColor)
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	c := f.colors
	fmt.Fprintf(f.writer, "\n%s\n\n", c.bold.Sprint("Running: "+result.File))

	for _, r := range result.Results {
		f.formatTest(r)
	}

	var parts []string
	if result.Passed > 0 {
		parts = append(parts, c.pass.Sprintf("%d passed", result.Passed))
	}
	if result.Failed > 0 {
		parts = append(parts, c.fail.Sprintf("%d failed", result.Failed))
	}
	if result.Skipped > 0 {
		parts = append(parts, c.skip.Sprintf("%d skipped", result.Skipped))
	}
	parts = append(parts, fmt.Sprintf("%d total", len(result.Results)))

	fmt.Fprintf(f.writer, "\nTests: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	if m := result.Metrics; f.verbose && m != nil && m.SuccessCount > 0 {
		fmt.Fprintf(f.writer, "Latency: p50 %s, p95 %s, p99 %s (%d requests, %d errors)\n",
			m.P50, m.P95, m.P99, m.TotalRequests, m.ErrorCount)
	}
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) formatTest(r *runner.TestResult) {
	c := f.colors

	switch {
	case r.Skipped:
		fmt.Fprintf(f.writer, "  %s %s", c.skip.Sprint("-"), r.Name)
		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
		}
		fmt.Fprintln(f.writer)
		return
	case r.Error != nil:
		fmt.Fprintf(f.writer, "  %s %s\n", c.fail.Sprint("✗"), r.Name)
		f.formatExchanges(r)
		fmt.Fprintf(f.writer, "    %s %v\n", c.fail.Sprint("error:"), r.Error)
		return
	case r.Passed:
		fmt.Fprintf(f.writer, "  %s %s %s\n", c.pass.Sprint("✓"), r.Name, c.dim.Sprintf("(%dms)", r.Duration.Milliseconds()))
		if f.verbose {
			f.formatExchanges(r)
		}
		return
	}

	fmt.Fprintf(f.writer, "  %s %s %s\n", c.fail.Sprint("✗"), r.Name, c.dim.Sprintf("(%dms)", r.Duration.Milliseconds()))
	if f.verbose {
		f.formatExchanges(r)
	}
	for _, a := range r.Assertions {
		if a.Passed {
			continue
		}
		fmt.Fprintf(f.writer, "    %s %s %s\n", c.fail.Sprint("→"), a.Subject, a.Operator)
		fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
		fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
		if f.verbose && a.Line > 0 {
			fmt.Fprintf(f.writer, "      at line %d\n", a.Line)
		}
	}
	if f.verbose && r.Response != nil {
		f.formatBody(r.Response)
	}
}

func (f *ConsoleFormatter) formatExchanges(r *runner.TestResult) {
	for _, ex := range r.Exchanges {
		fmt.Fprintf(f.writer, "    %s %s -> %d (%dms)\n",
			ex.Request.Method, ex.Request.URL, ex.Response.StatusCode, ex.Duration.Milliseconds())
	}
}

// formatBody echoes the last response body, pretty-printed when it is JSON.
func (f *ConsoleFormatter) formatBody(resp *http.Response) {
	body := strings.TrimRight(resp.PrettyBody(), "\n")
	if body == "" {
		return
	}
	lines := strings.Split(body, "\n")
	if len(lines) > maxBodyLines {
		lines = append(lines[:maxBodyLines], "...")
	}
	fmt.Fprintf(f.writer, "      %s\n", f.colors.dim.Sprint("Response body:"))
	for _, line := range lines {
		fmt.Fprintf(f.writer, "        %s\n", line)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "%s %v\n", f.colors.fail.Sprint("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.colors.bold.Sprint("testlang"), version)
}
