package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/testlang/packages/codegen"
)

var versionShortFlag bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		if versionShortFlag {
			fmt.Fprintln(w, version)
			return
		}
		fmt.Fprintf(w, "testlangc version %s\n", version)
		fmt.Fprintf(w, "Built:   %s\n", buildTime)
		fmt.Fprintf(w, "Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "Targets: %s\n", strings.Join(codegen.Targets(), ", "))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShortFlag, "short", false, "Print only the version number")
}
