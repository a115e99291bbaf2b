package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verilog-tools/vlint/internal/portgen"
)

var (
	portgenOut    string
	portgenModule string
)

var portgenCmd = &cobra.Command{
	Use:   "portgen <pins.csv>",
	Short: "Generate a module port list from tabular pin records",
	Long: `Read pin records (name, direction code, type, from/to code) from a CSV
file, merge bit ranges per base name and emit a module shell with one port
declaration per group. Rows typed "pad" are skipped and reported.

The generated file is valid input for vlint lint.

Examples:
  vlint portgen pins.csv
  vlint portgen --out analog_if.v --module analog_if pins.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPortgen,
}

func init() {
	rootCmd.AddCommand(portgenCmd)

	portgenCmd.Flags().StringVarP(&portgenOut, "out", "o", "generated_ports.v",
		"output file")
	portgenCmd.Flags().StringVarP(&portgenModule, "module", "m", "generated_ports",
		"generated module name")
}

func runPortgen(cmd *cobra.Command, args []string) error {
	records, err := portgen.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := portgen.Build(records)
	if err != nil {
		return err
	}

	if err := os.WriteFile(portgenOut, []byte(result.Render(portgenModule)), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", portgenOut, err)
	}

	fmt.Printf("Verilog file generated: %s\n", portgenOut)
	fmt.Println("\n===== Port Generation Summary =====")
	fmt.Printf("Number of input ports generated: %d\n", result.Stats.Inputs)
	fmt.Printf("Number of output ports generated: %d\n", result.Stats.Outputs)
	fmt.Printf("Number of ports not generated: %d\n", len(result.Skipped))
	if len(result.Skipped) > 0 {
		fmt.Println("\nDetails of ports not generated:")
		for _, rec := range result.Skipped {
			fmt.Printf("  %s (%s)\n", rec.Name, rec.Type)
		}
	}
	return nil
}
