package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verilog-tools/vlint/internal/runner"
	"github.com/verilog-tools/vlint/internal/validator"
)

var factsFiles []string

var factsCmd = &cobra.Command{
	Use:   "facts <path>",
	Short: "Dump the extracted fact tables as JSON",
	Long: `Extract ports, regs, usages, procedural blocks and keyword counts from
the given path and print them as relational tables. This is the exact input
handed to policy evaluation, useful when writing custom Rego rules.

With --files the tables are restricted to the named files (full path or base
name), which keeps the dump readable on large trees.`,
	Args: cobra.ExactArgs(1),
	RunE: runFacts,
}

func init() {
	rootCmd.AddCommand(factsCmd)

	factsCmd.Flags().StringSliceVar(&factsFiles, "files", nil,
		"restrict the tables to these files")
}

func runFacts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}

	tables, err := runner.New(cfg).FactTables(args[0], factsFiles)
	if err != nil {
		return err
	}

	v, err := validator.NewFactsValidator()
	if err != nil {
		return fmt.Errorf("creating facts validator: %w", err)
	}
	if err := v.Validate(tables); err != nil {
		return fmt.Errorf("fact tables violate schema contract: %w", err)
	}

	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tables: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
