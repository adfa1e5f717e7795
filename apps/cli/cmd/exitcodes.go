package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/config"
)

// Exit codes for testlangc
const (
	// ExitSuccess indicates the command completed and all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed
	ExitTestFailure = 1

	// ExitParseError indicates a lexical or syntax error in a source file
	ExitParseError = 2

	// ExitConfigError indicates an invalid or unreadable configuration
	ExitConfigError = 3

	// ExitNetworkError indicates a request could not be sent
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for err. A nil Err means the
// failure was already reported and nothing more is printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsageError, Err: fmt.Errorf(format, args...)}
}

// usageArgs maps argument validation failures to ExitUsageError.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &ExitError{Code: ExitUsageError, Err: err}
		}
		return nil
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if compiler.IsSourceError(err) {
		return ExitParseError
	}
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return ExitConfigError
	}
	if isUnknownCommand(err) {
		return ExitUsageError
	}
	return ExitTestFailure
}

var exitCodesCmd = &cobra.Command{
	Use:   "exitcodes",
	Short: "List the exit codes testlangc can return",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%3d  success\n", ExitSuccess)
		fmt.Fprintf(w, "%3d  one or more tests failed\n", ExitTestFailure)
		fmt.Fprintf(w, "%3d  lexical or syntax error in a source file\n", ExitParseError)
		fmt.Fprintf(w, "%3d  invalid configuration\n", ExitConfigError)
		fmt.Fprintf(w, "%3d  network error while running tests\n", ExitNetworkError)
		fmt.Fprintf(w, "%3d  invalid command line usage\n", ExitUsageError)
	},
}
