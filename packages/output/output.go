package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
)

// Formatter is implemented by every reporter
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that buffer results until the end of a run
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Names lists the reporter names accepted by New.
var Names = []string{"console", "json", "junit", "tap"}

// New builds the reporter called name writing to w.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "console", "":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown reporter %q (expected one of %v)", name, Names)
}
