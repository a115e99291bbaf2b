package portgen

// Port-list generator: turns tabular pin records into a synthesized module
// port list. Rows are grouped by (base name, direction), bit ranges sharing a
// base name are merged to the widest span, and the result is wrapped in a
// trivial module shell that the analyzer accepts as input.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// excludedType marks rows that must not produce a port.
const excludedType = "pad"

// PinRecord is one row of the tabular pin input:
// name, direction code, type, from/to code.
type PinRecord struct {
	Name      string
	Direction string
	Type      string
	FromTo    string
}

// Port is one merged port group.
type Port struct {
	Direction string
	Base      string
	HasRange  bool
	High      int
	Low       int
}

// Stats counts generated ports per direction.
type Stats struct {
	Inputs  int
	Outputs int
}

// Result is the outcome of one generation run.
type Result struct {
	Ports   []Port
	Stats   Stats
	Skipped []PinRecord
}

// mapDirection translates a from/to code into a port direction. Codes name
// the transfer direction between the analog and controller domains.
// An unmapped code deliberately falls back to input.
func mapDirection(code string) string {
	switch code {
	case "CA", "RA":
		return "output"
	case "AC", "AR":
		return "input"
	default:
		return "input"
	}
}

// ReadRecords reads pin records from CSV. The first row is a header and is
// skipped. Short rows are padded with empty fields.
func ReadRecords(r io.Reader) ([]PinRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pin records: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	records := make([]PinRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, PinRecord{
			Name:      field(row, 0),
			Direction: field(row, 1),
			Type:      field(row, 2),
			FromTo:    field(row, 3),
		})
	}
	return records, nil
}

// ReadFile reads pin records from a CSV file.
func ReadFile(path string) ([]PinRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pin file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

type groupKey struct {
	base      string
	direction string
}

type bitRange struct {
	high, low int
}

// Build groups records, merges ranges and produces the final port list.
// Groups keep first-seen order so output is stable across runs.
func Build(records []PinRecord) (Result, error) {
	result := Result{}

	var order []groupKey
	ranges := make(map[groupKey][]bitRange)
	unranged := make(map[groupKey]bool)

	for _, rec := range records {
		if rec.Type == excludedType {
			result.Skipped = append(result.Skipped, rec)
			continue
		}

		direction := mapDirection(rec.FromTo)
		base, r, hasRange, err := splitRange(rec.Name)
		if err != nil {
			return Result{}, fmt.Errorf("pin %q: %w", rec.Name, err)
		}

		key := groupKey{base: base, direction: direction}
		if _, seen := ranges[key]; !seen && !unranged[key] {
			order = append(order, key)
		}
		if hasRange {
			ranges[key] = append(ranges[key], r)
		} else {
			unranged[key] = true
			if _, seen := ranges[key]; !seen {
				ranges[key] = []bitRange{}
			}
		}
	}

	for _, key := range order {
		port := Port{Direction: key.direction, Base: key.base}
		if rs := ranges[key]; len(rs) > 0 {
			port.HasRange = true
			port.High = rs[0].high
			port.Low = rs[0].low
			for _, r := range rs[1:] {
				if r.high > port.High {
					port.High = r.high
				}
				if r.low < port.Low {
					port.Low = r.low
				}
			}
		}
		result.Ports = append(result.Ports, port)

		if key.direction == "output" {
			result.Stats.Outputs++
		} else {
			result.Stats.Inputs++
		}
	}

	return result, nil
}

// splitRange splits "name<7:0>" or "name<3>" into base name and bit range.
// Names without '<' have no range.
func splitRange(name string) (base string, r bitRange, hasRange bool, err error) {
	idx := strings.Index(name, "<")
	if idx < 0 {
		return name, bitRange{}, false, nil
	}

	base = name[:idx]
	spec := strings.TrimSuffix(name[idx+1:], ">")

	if colon := strings.Index(spec, ":"); colon >= 0 {
		high, err := strconv.Atoi(spec[:colon])
		if err != nil {
			return "", bitRange{}, false, fmt.Errorf("parsing range %q: %w", spec, err)
		}
		low, err := strconv.Atoi(spec[colon+1:])
		if err != nil {
			return "", bitRange{}, false, fmt.Errorf("parsing range %q: %w", spec, err)
		}
		return base, bitRange{high: high, low: low}, true, nil
	}

	bit, err := strconv.Atoi(spec)
	if err != nil {
		return "", bitRange{}, false, fmt.Errorf("parsing bit %q: %w", spec, err)
	}
	return base, bitRange{high: bit, low: bit}, true, nil
}

// PortLines renders one declaration line per port group.
func (r Result) PortLines() []string {
	lines := make([]string, 0, len(r.Ports))
	for _, p := range r.Ports {
		if p.HasRange {
			lines = append(lines, fmt.Sprintf("%s [%d:%d] %s", p.Direction, p.High, p.Low, p.Base))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", p.Direction, p.Base))
		}
	}
	return lines
}

// Render wraps the port list in a module shell. The output is valid analyzer
// input.
func (r Result) Render(moduleName string) string {
	if moduleName == "" {
		moduleName = "generated_ports"
	}
	var b strings.Builder
	b.WriteString("module " + moduleName + " (\n")
	b.WriteString("    " + strings.Join(r.PortLines(), ",\n    ") + "\n")
	b.WriteString(");\n\nendmodule")
	return b.String()
}
