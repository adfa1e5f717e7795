package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new testlang project",
	Long: `Initialize a new testlang project in the current directory.

This creates:
  - .testlang.yaml  - Configuration file
  - example.tl      - Example test file

Examples:
  testlangc init
  testlangc init --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleSource = `// Example testlang suite. Compile it with:
//   testlangc compile example.tl
// or run it against a live server with:
//   testlangc run example.tl

config {
  base_url = "http://localhost:8080";
  header "Accept" = "application/json";
}

let user = "admin";
let expected_status = 200;

test health {
  GET "/health";
  expect status = 200;
}

test login {
  POST "/login" {
    header "Content-Type" = "application/json";
    body = "{\"username\": \"$user\"}";
  }
  expect status = 200;
  expect header "Content-Type" contains "json";
  expect body contains "token";
}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "example.tl")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.OutputDir = "generated"
	cfg.Variables = map[string]string{"user": "admin"}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleSource), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\ntestlang project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'testlangc compile example.tl' to generate tests.\n")

	return nil
}
