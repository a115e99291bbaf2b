package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verilog-tools/vlint/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a verilog_lint.json configuration file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "verilog_lint.json"

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", path)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Rule severities (off, warning, error)")
	fmt.Println("  - File ignore patterns")
	fmt.Println("  - A custom Rego policy directory")
	return nil
}
