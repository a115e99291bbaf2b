package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verilog-tools/vlint/internal/config"
	"github.com/verilog-tools/vlint/internal/runner"
)

var jsonOutput bool

var lintCmd = &cobra.Command{
	Use:   "lint <path>",
	Short: "Analyze Verilog files under a path",
	Long: `Run the analyzer over a single file or every .v/.sv file under a
directory. Findings are reported together; no finding aborts the run.

Examples:
  vlint lint top.v
  vlint lint --json rtl/
  vlint lint -c verilog_lint.json rtl/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
}

func runLint(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	result, err := runner.New(cfg).Run(path)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Println(string(data))
	} else {
		if verbose {
			result.RenderFiles(os.Stdout)
		}
		result.RenderText(os.Stdout)
	}

	if result.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// loadConfig loads an explicit config file when -c is given, otherwise the
// search path relative to the lint target.
func loadConfig(path string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v (using defaults)\n", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}
