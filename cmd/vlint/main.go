package main

import "github.com/verilog-tools/vlint/cmd/vlint/cmd"

func main() {
	cmd.Execute()
}
