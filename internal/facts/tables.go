package facts

import (
	"sort"
	"strings"

	"github.com/verilog-tools/vlint/internal/extractor"
)

// Tables is the relational fact model handed to policy evaluation and to the
// facts dump. Each slice is a relation (table) with flat rows.
type Tables struct {
	Files       []FileRow       `json:"files"`
	Ports       []PortRow       `json:"ports"`
	Regs        []RegRow        `json:"regs"`
	Usages      []UsageRow      `json:"usages"`
	Blocks      []BlockRow      `json:"blocks"`
	Assignments []AssignmentRow `json:"assignments"`
	Keywords    []KeywordRow    `json:"keywords"`
}

type FileRow struct {
	Path string `json:"path"`
}

type PortRow struct {
	File      string `json:"file"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Line      int    `json:"line"`
}

type RegRow struct {
	File string `json:"file"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

type UsageRow struct {
	File string `json:"file"`
	Name string `json:"name"`
}

type BlockRow struct {
	File  string `json:"file"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	Line  int    `json:"line"`
	Lines int    `json:"lines"`
}

type AssignmentRow struct {
	File       string `json:"file"`
	BlockKind  string `json:"block_kind"`
	BlockIndex int    `json:"block_index"`
	Name       string `json:"name"`
}

type KeywordRow struct {
	File      string `json:"file"`
	Module    int    `json:"module"`
	Endmodule int    `json:"endmodule"`
}

// BuildTables flattens per-file facts into relational rows. Set-valued facts
// are emitted in sorted name order so repeated builds produce identical
// tables.
func BuildTables(all []extractor.FileFacts) Tables {
	tables := emptyTables()

	for _, facts := range all {
		tables.Files = append(tables.Files, FileRow{Path: facts.File})

		for _, p := range facts.Ports {
			tables.Ports = append(tables.Ports, PortRow{
				File:      facts.File,
				Name:      p.Name,
				Direction: p.Direction,
				Line:      p.Line,
			})
		}
		for _, r := range facts.Regs {
			tables.Regs = append(tables.Regs, RegRow{
				File: facts.File,
				Name: r.Name,
				Line: r.Line,
			})
		}
		for _, name := range sortedNames(facts.UsedIdents) {
			tables.Usages = append(tables.Usages, UsageRow{File: facts.File, Name: name})
		}

		for _, block := range facts.CombBlocks {
			appendBlockRows(&tables, facts.File, block)
		}
		for _, block := range facts.SeqBlocks {
			appendBlockRows(&tables, facts.File, block)
		}

		tables.Keywords = append(tables.Keywords, KeywordRow{
			File:      facts.File,
			Module:    facts.ModuleCount,
			Endmodule: facts.EndmoduleCount,
		})
	}

	return tables
}

func appendBlockRows(tables *Tables, file string, block extractor.ProceduralBlock) {
	tables.Blocks = append(tables.Blocks, BlockRow{
		File:  file,
		Kind:  string(block.Kind),
		Index: block.Index,
		Line:  block.Line,
		Lines: strings.Count(block.Body, "\n") + 1,
	})
	for _, name := range sortedNames(extractor.FindAssignedVariables(block.Body)) {
		tables.Assignments = append(tables.Assignments, AssignmentRow{
			File:       file,
			BlockKind:  string(block.Kind),
			BlockIndex: block.Index,
			Name:       name,
		})
	}
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emptyTables returns Tables with every relation initialized so JSON output
// always carries arrays, never null. The schema contract depends on this.
func emptyTables() Tables {
	return Tables{
		Files:       []FileRow{},
		Ports:       []PortRow{},
		Regs:        []RegRow{},
		Usages:      []UsageRow{},
		Blocks:      []BlockRow{},
		Assignments: []AssignmentRow{},
		Keywords:    []KeywordRow{},
	}
}
