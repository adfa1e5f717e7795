package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/config"
	"github.com/abdul-hamid-achik/testlang/packages/core/env"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func printWarning(w io.Writer, format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", yellow("warning:"), fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", red("error:"), fmt.Sprintf(format, args...))
}

// warnTo returns a warning hook that prints to the command's stderr.
func warnTo(cmd *cobra.Command) func(format string, args ...any) {
	return func(format string, args ...any) {
		printWarning(cmd.ErrOrStderr(), format, args...)
	}
}

// loadConfig loads --config, or the first config file found in the
// working directory, or the defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, &ExitError{Code: ExitConfigError, Err: fmt.Errorf("loading config: %w", err)}
	}
	return cfg, nil
}

// collectFiles expands args into .tl sources.
func collectFiles(args []string) ([]string, error) {
	files, err := compiler.FindSources(args)
	if err != nil {
		return nil, usageError("cannot access source: %v", err)
	}
	if len(files) == 0 {
		return nil, usageError("no %s files found", compiler.SourceExt)
	}
	return files, nil
}

// seedVariables gathers external variable bindings. Later sources win:
// config variables, then the env file, then TESTLANG_VAR_* from the
// environment, then --var flags. let statements in the source override all
// of them.
func seedVariables(cfg *config.Config, envFile string, assignments []string) ([]env.Binding, error) {
	var fromConfig []env.Binding
	names := make([]string, 0, len(cfg.Variables))
	for name := range cfg.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fromConfig = append(fromConfig, env.Binding{Name: name, Value: cfg.Variables[name]})
	}

	if envFile == "" {
		envFile = cfg.EnvFile
	}
	var fromFile []env.Binding
	if envFile != "" {
		var err error
		fromFile, err = env.LoadVarFile(envFile)
		if err != nil {
			return nil, &ExitError{Code: ExitConfigError, Err: fmt.Errorf("loading env file: %w", err)}
		}
	}

	var fromFlags []env.Binding
	for _, a := range assignments {
		b, err := env.ParseAssignment(a)
		if err != nil {
			return nil, usageError("invalid --var %q: %v", a, err)
		}
		fromFlags = append(fromFlags, b)
	}

	return env.MergeBindings(fromConfig, fromFile, env.LoadSystemEnv(env.DefaultEnvPrefix), fromFlags), nil
}
