package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
)

// TAPFormatter writes TAP version 13. Points are buffered so the plan line
// can carry the total count; each file opens with a comment line.
type TAPFormatter struct {
	writer io.Writer
	files  []tapFile
	errors []string
	total  int
}

type tapFile struct {
	name   string
	points []tapPoint
}

type tapPoint struct {
	ok         bool
	name       string
	directive  string
	diagnostic *tapDiagnostic
}

// tapDiagnostic is rendered as the YAML block under a failed point.
type tapDiagnostic struct {
	Message  string       `yaml:"message"`
	Severity string       `yaml:"severity"`
	At       string       `yaml:"at,omitempty"`
	Requests []string     `yaml:"requests,omitempty"`
	Failures []tapFailure `yaml:"failures,omitempty"`
}

type tapFailure struct {
	Line     int    `yaml:"line"`
	Check    string `yaml:"check"`
	Expected any    `yaml:"expected"`
	Actual   any    `yaml:"actual"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	file := tapFile{name: result.File}
	for _, r := range result.Results {
		file.points = append(file.points, newTAPPoint(result.File, r))
	}
	f.total += len(file.points)
	f.files = append(f.files, file)
}

func newTAPPoint(file string, r *runner.TestResult) tapPoint {
	p := tapPoint{ok: r.Passed || r.Skipped, name: r.Name}
	if r.Skipped {
		p.directive = "SKIP " + r.SkipReason
		return p
	}
	if p.ok {
		return p
	}

	d := &tapDiagnostic{Severity: "fail"}
	if r.Line > 0 {
		d.At = fmt.Sprintf("%s:%d", file, r.Line)
	}
	for _, ex := range r.Exchanges {
		d.Requests = append(d.Requests, fmt.Sprintf("%s %s -> %d", ex.Request.Method, ex.Request.URL, ex.Response.StatusCode))
	}

	if r.Error != nil {
		d.Message = r.Error.Error()
		d.Severity = "error"
	}
	for _, a := range r.Assertions {
		if a.Passed {
			continue
		}
		if d.Message == "" {
			d.Message = a.Message
		}
		d.Failures = append(d.Failures, tapFailure{
			Line:     a.Line,
			Check:    a.Subject + " " + a.Operator,
			Expected: a.Expected,
			Actual:   a.Actual,
		})
	}
	p.diagnostic = d
	return p
}

// FormatError records a file-level failure as a comment after the plan.
func (f *TAPFormatter) FormatError(err error) {
	f.errors = append(f.errors, firstLine(err.Error()))
}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the accumulated points.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "TAP version 13\n1..%d\n", f.total)
	for _, e := range f.errors {
		fmt.Fprintf(&buf, "# error: %s\n", e)
	}

	n := 0
	for _, file := range f.files {
		fmt.Fprintf(&buf, "# %s\n", file.name)
		for _, p := range file.points {
			n++
			status := "ok"
			if !p.ok {
				status = "not ok"
			}
			fmt.Fprintf(&buf, "%s %d - %s", status, n, p.name)
			if p.directive != "" {
				fmt.Fprintf(&buf, " # %s", strings.TrimSpace(p.directive))
			}
			buf.WriteByte('\n')

			if p.diagnostic != nil {
				if err := writeTAPDiagnostic(&buf, p.diagnostic); err != nil {
					return err
				}
			}
		}
	}
	fmt.Fprintf(&buf, "# time %.3fs\n", totalDuration.Seconds())

	_, err := f.writer.Write(buf.Bytes())
	return err
}

func writeTAPDiagnostic(w *bytes.Buffer, d *tapDiagnostic) error {
	var doc bytes.Buffer
	enc := yaml.NewEncoder(&doc)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding TAP diagnostic: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	w.WriteString("  ---\n")
	for _, line := range strings.Split(strings.TrimRight(doc.String(), "\n"), "\n") {
		w.WriteString("  " + line + "\n")
	}
	w.WriteString("  ...\n")
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
