package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/codegen"
	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/config"
)

var (
	compileOutFlag     string
	compileTargetFlag  string
	compileClassFlag   string
	compilePackageFlag string
	compileVarFlags    []string
	compileEnvFileFlag string
	compileWatchFlag   bool
	compileStdoutFlag  bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file|directory>...",
	Short: "Compile testlang files into test sources",
	Long: `Compile .tl files into JUnit 5 (default) or Go test sources.

A single input is written next to the source, or to --out when given.
Several inputs are written to one sub-directory per source file.

Examples:
  testlangc compile api.tl
  testlangc compile api.tl -o src/test/java/GeneratedTests.java
  testlangc compile ./tests/ --target gotest --package apitest -o ./generated
  testlangc compile api.tl --var token=abc --stdout
  testlangc compile ./tests/ --watch`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: compileCommand,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutFlag, "out", "o", getEnvString("TESTLANG_OUT", ""), "Output file or directory (env: TESTLANG_OUT)")
	compileCmd.Flags().StringVarP(&compileTargetFlag, "target", "t", getEnvString("TESTLANG_TARGET", ""), "Code generation target: "+strings.Join(codegen.Targets(), ", ")+" (env: TESTLANG_TARGET)")
	compileCmd.Flags().StringVar(&compileClassFlag, "class", "", "Generated class name (default: "+codegen.DefaultClassName+")")
	compileCmd.Flags().StringVar(&compilePackageFlag, "package", "", "Package name for the gotest target (default: "+codegen.DefaultPackage+")")
	compileCmd.Flags().StringArrayVar(&compileVarFlags, "var", nil, "Seed a variable (name=value); let statements override it")
	compileCmd.Flags().StringVar(&compileEnvFileFlag, "env-file", getEnvString("TESTLANG_ENV_FILE", ""), "Path to a name=value file of seed variables (env: TESTLANG_ENV_FILE)")
	compileCmd.Flags().BoolVarP(&compileWatchFlag, "watch", "w", false, "Watch sources and recompile on change")
	compileCmd.Flags().BoolVar(&compileStdoutFlag, "stdout", false, "Write generated code to stdout instead of files")
}

func compileCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := compiler.OptionsFromConfig(cfg)
	if compileTargetFlag != "" {
		opts.Target = compileTargetFlag
	}
	if compileClassFlag != "" {
		opts.ClassName = compileClassFlag
	}
	if compilePackageFlag != "" {
		opts.Package = compilePackageFlag
	}
	if opts.Target != "" && !validTarget(opts.Target) {
		return usageError("unknown target %q (expected one of %s)", opts.Target, strings.Join(codegen.Targets(), ", "))
	}
	opts.Variables, err = seedVariables(cfg, compileEnvFileFlag, compileVarFlags)
	if err != nil {
		return err
	}

	c := compiler.New(opts)

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	err = compileAll(cmd, c, cfg, files)
	if !compileWatchFlag {
		return err
	}

	return watchSources(cmd.Context(), cmd.OutOrStdout(), args, files, func(string) {
		files, err := compiler.FindSources(args)
		if err != nil {
			printError(cmd.ErrOrStderr(), "%v", err)
			return
		}
		_ = compileAll(cmd, c, cfg, files)
	})
}

// compileAll compiles files and writes their output. Every failure is
// reported; the returned error carries the exit code of the first one.
func compileAll(cmd *cobra.Command, c *compiler.Compiler, cfg *config.Config, files []string) error {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConfig().Concurrency
	}

	var firstErr error
	for _, fr := range c.CompileFiles(files, concurrency) {
		if fr.Err != nil {
			reportError(cmd.ErrOrStderr(), fr.Err)
			if firstErr == nil {
				firstErr = fr.Err
			}
			continue
		}

		for _, w := range fr.Result.Warnings {
			printWarning(cmd.ErrOrStderr(), "%s", w.String())
		}

		if compileStdoutFlag {
			fmt.Fprint(cmd.OutOrStdout(), fr.Result.Output)
			continue
		}

		dest := outputPath(compileOutFlag, cfg.OutputDir, fr.Path, fr.Result.FileName, len(files) > 1)
		if err := writeOutput(dest, fr.Result.Output); err != nil {
			printError(cmd.ErrOrStderr(), "%v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Compiled: %s -> %s\n", fr.Path, dest)
	}

	if firstErr != nil {
		return &ExitError{Code: exitCode(firstErr)}
	}
	return nil
}

// outputPath decides where the code generated from src goes. out names a
// file only for a single input that is not an existing directory.
func outputPath(out, outputDir, src, fileName string, multiple bool) string {
	if out != "" && !multiple && !strings.HasSuffix(out, string(os.PathSeparator)) {
		if info, err := os.Stat(out); err != nil || !info.IsDir() {
			return out
		}
	}

	dir := out
	if dir == "" {
		dir = outputDir
	}
	if dir == "" {
		dir = filepath.Dir(src)
	}

	if multiple {
		stem := strings.TrimSuffix(filepath.Base(src), compiler.SourceExt)
		return filepath.Join(dir, stem, fileName)
	}
	return filepath.Join(dir, fileName)
}

func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func validTarget(name string) bool {
	for _, t := range codegen.Targets() {
		if t == name {
			return true
		}
	}
	return false
}
