package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "vlint",
	Short: "Structural and style analyzer for Verilog source text",
	Long: `vlint flags unused port declarations, assignment-style violations in
procedural blocks, registers assigned without a declaration, mismatched
begin/end delimiters and mismatched module/endmodule markers. Detection is
pattern-based: no full grammar, tolerant of partial or malformed input.

Examples:
  vlint lint rtl/                       # Lint every .v/.sv file under rtl/
  vlint lint --json top.v               # Machine-readable report for one file
  vlint watch rtl/                      # Re-lint on every change
  vlint portgen pins.csv                # Generate a port-list module from pin records`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search path)")
}
