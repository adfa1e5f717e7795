package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/config"
	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
	"github.com/abdul-hamid-achik/testlang/packages/history"
	"github.com/abdul-hamid-achik/testlang/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run testlang tests against a live server",
	Long: `Run the tests defined in .tl files directly, without generating code.

Requests use the same resolution rules as generated code: default headers
are sent first and request headers override them, and assertions check the
last response of each test.

Examples:
  testlangc run api.tl
  testlangc run ./tests/ --parallel --concurrency 10
  testlangc run api.tl --name "login*" --bail
  testlangc run api.tl --rate 5 --output junit --output-file report.xml
  testlangc run api.tl --history .testlang/history.db`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runCommand,
}

var (
	runNameFlag        string
	runBailFlag        bool
	runParallelFlag    bool
	runConcurrencyFlag int
	runRateFlag        float64
	runTimeoutFlag     string
	runVarFlags        []string
	runEnvFileFlag     string
	runOutputFlag      string
	runOutputFileFlag  string
	runHistoryFlag     string
	runVerboseFlag     bool
	runWatchFlag       bool
	runDryRunFlag      bool
)

func init() {
	runCmd.Flags().StringVarP(&runNameFlag, "name", "n", "", "Run only tests matching name pattern (supports leading or trailing *)")
	runCmd.Flags().BoolVar(&runBailFlag, "bail", getEnvBool("TESTLANG_BAIL", false), "Stop on first failure (env: TESTLANG_BAIL)")
	runCmd.Flags().BoolVarP(&runParallelFlag, "parallel", "p", getEnvBool("TESTLANG_PARALLEL", false), "Run tests in parallel (env: TESTLANG_PARALLEL)")
	runCmd.Flags().IntVar(&runConcurrencyFlag, "concurrency", getEnvInt("TESTLANG_CONCURRENCY", 5), "Number of concurrent tests when running in parallel (env: TESTLANG_CONCURRENCY)")
	runCmd.Flags().Float64Var(&runRateFlag, "rate", getEnvFloat("TESTLANG_RATE", 0), "Maximum requests per second across all tests, 0 for unlimited (env: TESTLANG_RATE)")
	runCmd.Flags().StringVar(&runTimeoutFlag, "timeout", getEnvString("TESTLANG_TIMEOUT", ""), "Request timeout, e.g. 10s (default from config requestTimeout) (env: TESTLANG_TIMEOUT)")
	runCmd.Flags().StringArrayVar(&runVarFlags, "var", nil, "Seed a variable (name=value); let statements override it")
	runCmd.Flags().StringVar(&runEnvFileFlag, "env-file", getEnvString("TESTLANG_ENV_FILE", ""), "Path to a name=value file of seed variables (env: TESTLANG_ENV_FILE)")
	runCmd.Flags().StringVarP(&runOutputFlag, "output", "o", getEnvString("TESTLANG_OUTPUT", ""), "Output format: "+strings.Join(output.Names, ", ")+" (env: TESTLANG_OUTPUT)")
	runCmd.Flags().StringVar(&runOutputFileFlag, "output-file", getEnvString("TESTLANG_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: TESTLANG_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&runHistoryFlag, "history", getEnvString("TESTLANG_HISTORY", ""), "Record runs in this SQLite database (env: TESTLANG_HISTORY)")
	runCmd.Flags().BoolVarP(&runVerboseFlag, "verbose", "v", getEnvBool("TESTLANG_VERBOSE", false), "Show every request and latency percentiles (env: TESTLANG_VERBOSE)")
	runCmd.Flags().BoolVarP(&runWatchFlag, "watch", "w", false, "Watch files for changes and re-run tests")
	runCmd.Flags().BoolVar(&runDryRunFlag, "dry-run", false, "Show which files would run without sending requests")
}

// runSummary aggregates the outcome of every file in one invocation.
type runSummary struct {
	passed, failed, skipped int
	networkErr              bool
	firstErr                error
	duration                time.Duration
}

func (s *runSummary) exitError() error {
	switch {
	case s.firstErr != nil:
		return &ExitError{Code: exitCode(s.firstErr)}
	case s.networkErr:
		return &ExitError{Code: ExitNetworkError}
	case s.failed > 0:
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runnerCfg, err := buildRunnerConfig(cmd, cfg)
	if err != nil {
		return err
	}

	format := runOutputFlag
	if format == "" && len(cfg.Reporters) > 0 {
		format = cfg.Reporters[0]
	}
	format = strings.ToLower(format)

	if !validReporter(format) {
		return usageError("unknown output format %q (expected one of %s)", format, strings.Join(output.Names, ", "))
	}

	var out io.Writer = cmd.OutOrStdout()
	if runOutputFileFlag != "" {
		f, err := os.Create(runOutputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	historyPath := runHistoryFlag
	if historyPath == "" {
		historyPath = cfg.History
	}
	var store *history.Store
	if historyPath != "" && !runDryRunFlag {
		store, err = history.Open(historyPath)
		if err != nil {
			return &ExitError{Code: ExitConfigError, Err: err}
		}
		defer store.Close()
	}

	r := runner.NewRunner(runnerCfg)
	noColor := noColorFlag || cfg.GetNoColor()

	runTests := func(ctx context.Context, files []string) *runSummary {
		formatter, _ := output.New(format, out, runnerCfg.Verbose, noColor)
		formatter.FormatHeader(version)

		summary := &runSummary{}
		start := time.Now()

		for _, file := range files {
			if runDryRunFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", file)
				continue
			}

			startedAt := time.Now()
			result, err := r.RunFile(ctx, file)
			if err != nil {
				reportError(cmd.ErrOrStderr(), err)
				if format != "console" && format != "" {
					formatter.FormatError(err)
				}
				if summary.firstErr == nil {
					summary.firstErr = err
				}
				if runnerCfg.Bail {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			summary.passed += result.Passed
			summary.failed += result.Failed
			summary.skipped += result.Skipped
			if result.HasNetworkErrors() {
				summary.networkErr = true
			}

			if store != nil {
				if _, err := store.Record(ctx, result, startedAt); err != nil {
					printWarning(cmd.ErrOrStderr(), "failed to record history: %v", err)
				}
			}

			if runnerCfg.Bail && result.Failed > 0 {
				break
			}
		}

		summary.duration = time.Since(start)
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(summary.duration); err != nil {
				printError(cmd.ErrOrStderr(), "error writing output: %v", err)
			}
		}
		return summary
	}

	summary := runTests(cmd.Context(), files)
	if !runWatchFlag {
		return summary.exitError()
	}

	return watchSources(cmd.Context(), cmd.OutOrStdout(), args, files, func(string) {
		files, err := collectFiles(args)
		if err != nil {
			printError(cmd.ErrOrStderr(), "%v", err)
			return
		}
		runTests(cmd.Context(), files)
	})
}

// buildRunnerConfig merges config file settings with flags. Flags that
// were set explicitly win.
func buildRunnerConfig(cmd *cobra.Command, cfg *config.Config) (*runner.Config, error) {
	vars, err := seedVariables(cfg, runEnvFileFlag, runVarFlags)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if runTimeoutFlag != "" {
		timeout, err = time.ParseDuration(runTimeoutFlag)
		if err != nil {
			return nil, usageError("invalid timeout value %q: %v (use format like 10s, 1m, 500ms)", runTimeoutFlag, err)
		}
	}

	concurrency := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") || concurrency <= 0 {
		concurrency = runConcurrencyFlag
	}
	if concurrency <= 0 {
		return nil, usageError("--concurrency must be at least 1")
	}

	rate := cfg.Rate
	if cmd.Flags().Changed("rate") || runRateFlag > 0 {
		rate = runRateFlag
	}
	if rate < 0 {
		return nil, usageError("--rate must not be negative")
	}

	return &runner.Config{
		Verbose:        runVerboseFlag || cfg.GetVerbose(),
		Timeout:        timeout,
		ConnectTimeout: time.Duration(cfg.ConnectTimeout) * time.Second,
		Bail:           runBailFlag || cfg.GetBail(),
		NameFilter:     runNameFlag,
		Parallel:       runParallelFlag || cfg.GetParallel(),
		Concurrency:    concurrency,
		Rate:           rate,
		DefaultBaseURL: cfg.DefaultBaseURL,
		Variables:      vars,
		WarnFunc:       warnTo(cmd),
	}, nil
}

func validReporter(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range output.Names {
		if n == name {
			return true
		}
	}
	return false
}
