package portgen

import (
	"strings"
	"testing"
)

func TestBuildMapsDirectionsAndMergesRanges(t *testing.T) {
	records := []PinRecord{
		{Name: "data<7:4>", Type: "signal", FromTo: "CA"},
		{Name: "data<3:0>", Type: "signal", FromTo: "CA"},
		{Name: "clk", Type: "signal", FromTo: "AC"},
		{Name: "probe<2>", Type: "signal", FromTo: "RA"},
	}

	result, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := result.PortLines()
	want := []string{
		"output [7:0] data",
		"input clk",
		"output [2:2] probe",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
	if result.Stats.Inputs != 1 || result.Stats.Outputs != 2 {
		t.Fatalf("expected 1 input / 2 outputs, got %+v", result.Stats)
	}
}

func TestBuildUnmappedCodeDefaultsToInput(t *testing.T) {
	result, err := Build([]PinRecord{{Name: "mystery", Type: "signal", FromTo: "XX"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Ports) != 1 || result.Ports[0].Direction != "input" {
		t.Fatalf("unmapped code must default to input, got %+v", result.Ports)
	}
}

func TestBuildSkipsPadRows(t *testing.T) {
	records := []PinRecord{
		{Name: "vdd", Type: "pad", FromTo: "AC"},
		{Name: "sig", Type: "signal", FromTo: "AC"},
	}

	result, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Ports) != 1 || result.Ports[0].Base != "sig" {
		t.Fatalf("expected only sig, got %+v", result.Ports)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Name != "vdd" {
		t.Fatalf("expected vdd skipped, got %+v", result.Skipped)
	}
}

func TestBuildKeepsFirstSeenOrder(t *testing.T) {
	records := []PinRecord{
		{Name: "zeta", Type: "signal", FromTo: "AC"},
		{Name: "alpha", Type: "signal", FromTo: "AC"},
		{Name: "zeta", Type: "signal", FromTo: "AC"},
	}

	result, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Ports) != 2 || result.Ports[0].Base != "zeta" || result.Ports[1].Base != "alpha" {
		t.Fatalf("expected first-seen order zeta, alpha; got %+v", result.Ports)
	}
}

func TestBuildSameNameDifferentDirectionsStaysSeparate(t *testing.T) {
	records := []PinRecord{
		{Name: "bus<1:0>", Type: "signal", FromTo: "CA"},
		{Name: "bus<3:2>", Type: "signal", FromTo: "AC"},
	}

	result, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Ports) != 2 {
		t.Fatalf("expected 2 groups, got %+v", result.Ports)
	}
}

func TestBuildRejectsMalformedRange(t *testing.T) {
	if _, err := Build([]PinRecord{{Name: "bad<x:0>", Type: "signal", FromTo: "AC"}}); err == nil {
		t.Fatal("expected error for malformed range")
	}
}

func TestRenderWrapsInModuleShell(t *testing.T) {
	result, err := Build([]PinRecord{
		{Name: "d<1:0>", Type: "signal", FromTo: "CA"},
		{Name: "clk", Type: "signal", FromTo: "AC"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := result.Render("generated_ports")

	want := "module generated_ports (\n    output [1:0] d,\n    input clk\n);\n\nendmodule"
	if text != want {
		t.Fatalf("unexpected render:\n%q\nwant:\n%q", text, want)
	}
}

func TestReadRecordsSkipsHeader(t *testing.T) {
	csv := `PortName,Direction,Type,FromTo
data<7:0>,DIR,signal,CA
clk,DIR,signal,AC
vdd,DIR,pad,AC
`

	records, err := ReadRecords(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Name != "data<7:0>" || records[0].FromTo != "CA" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
}

func TestGeneratedOutputIsAnalyzableText(t *testing.T) {
	result, err := Build([]PinRecord{{Name: "y", Type: "signal", FromTo: "CA"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := result.Render("")
	if !strings.HasPrefix(text, "module generated_ports (") {
		t.Fatalf("expected default module name, got %q", text)
	}
	if !strings.HasSuffix(text, "endmodule") {
		t.Fatalf("expected endmodule suffix, got %q", text)
	}
}
