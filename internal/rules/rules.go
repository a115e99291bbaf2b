package rules

// =============================================================================
// RULE EVALUATOR: PURE CHECKS OVER EXTRACTED FACTS
// =============================================================================
//
// Every check is a pure function of the facts produced by the extractor.
// Checks never re-scan raw text outside their designated block body, never
// print, and never short-circuit: all findings for a run are collected and
// returned together in one AnalysisReport.
//
// The matching is lexical, not grammatical. A begin inside a string literal
// still counts toward delimiter balance, and a comparison like a == b makes
// "a" look like an assignment target. These are accepted limits of
// pattern-based extraction, not bugs to patch around here.
// =============================================================================

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verilog-tools/vlint/internal/extractor"
)

// Category identifies one kind of finding.
type Category string

const (
	UnusedPort                Category = "unused-port"
	NonBlockingInComb         Category = "nonblocking-in-comb"
	BlockingInSeq             Category = "blocking-in-seq"
	UndeclaredRegAssignment   Category = "undeclared-reg"
	MismatchedBeginEnd        Category = "mismatched-begin-end"
	MismatchedModuleEndmodule Category = "mismatched-module"
)

// Categories lists every finding category in report order.
var Categories = []Category{
	UnusedPort,
	MismatchedModuleEndmodule,
	MismatchedBeginEnd,
	NonBlockingInComb,
	BlockingInSeq,
	UndeclaredRegAssignment,
}

// Finding is one reported defect instance. BlockIndex is 1-based within the
// block kind and zero for file-scope findings.
type Finding struct {
	Category   Category            `json:"category"`
	BlockKind  extractor.BlockKind `json:"block_kind,omitempty"`
	BlockIndex int                 `json:"block_index,omitempty"`
	Detail     string              `json:"detail"`
}

// Summary holds per-category finding counts plus the number of blocks
// examined. Every category appears even when its count is zero.
type Summary struct {
	UnusedPorts        int `json:"unused_ports"`
	NonBlockingInComb  int `json:"nonblocking_in_comb"`
	BlockingInSeq      int `json:"blocking_in_seq"`
	UndeclaredRegs     int `json:"undeclared_regs"`
	MismatchedBeginEnd int `json:"mismatched_begin_end"`
	MismatchedModules  int `json:"mismatched_modules"`
	CombBlocks         int `json:"comb_blocks"`
	SeqBlocks          int `json:"seq_blocks"`
}

// Total returns the sum of all finding counts.
func (s Summary) Total() int {
	return s.UnusedPorts + s.NonBlockingInComb + s.BlockingInSeq +
		s.UndeclaredRegs + s.MismatchedBeginEnd + s.MismatchedModules
}

// AnalysisReport is the aggregated result of one analysis run.
type AnalysisReport struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// Analyze runs the full pipeline on one source text: extraction, block
// segmentation, then all checks. Idempotent and side-effect free.
func Analyze(text string) AnalysisReport {
	return Evaluate(extractor.Extract(text))
}

// Evaluate runs every check against already-extracted facts and aggregates
// the results, preserving check-emission order.
func Evaluate(facts extractor.FileFacts) AnalysisReport {
	report := AnalysisReport{Findings: []Finding{}}
	report.Summary.CombBlocks = len(facts.CombBlocks)
	report.Summary.SeqBlocks = len(facts.SeqBlocks)

	findings, n := checkUnusedPorts(facts.PortNames(), facts.UsedIdents)
	report.Findings = append(report.Findings, findings...)
	report.Summary.UnusedPorts += n

	findings, n = checkModuleBalance(facts.ModuleCount, facts.EndmoduleCount)
	report.Findings = append(report.Findings, findings...)
	report.Summary.MismatchedModules += n

	regs := facts.RegNames()
	for _, block := range facts.CombBlocks {
		report.appendBlockFindings(block, regs)
	}
	for _, block := range facts.SeqBlocks {
		report.appendBlockFindings(block, regs)
	}

	return report
}

func (r *AnalysisReport) appendBlockFindings(block extractor.ProceduralBlock, regs map[string]bool) {
	findings, n := checkBeginEnd(block)
	r.Findings = append(r.Findings, findings...)
	r.Summary.MismatchedBeginEnd += n

	findings, n = checkAssignmentDiscipline(block)
	r.Findings = append(r.Findings, findings...)
	if block.Kind == extractor.Combinational {
		r.Summary.NonBlockingInComb += n
	} else {
		r.Summary.BlockingInSeq += n
	}

	findings, n = checkUndeclaredRegs(block, regs)
	r.Findings = append(r.Findings, findings...)
	r.Summary.UndeclaredRegs += n
}

// checkUnusedPorts reports declared ports that never appear adjacent to an
// assignment or operator token. Ports used only as plain assignment targets
// count as used, because the usage pattern includes assignment tokens.
func checkUnusedPorts(ports, used map[string]bool) ([]Finding, int) {
	var unused []string
	for name := range ports {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) == 0 {
		return nil, 0
	}
	sort.Strings(unused)
	return []Finding{{
		Category: UnusedPort,
		Detail:   strings.Join(unused, ", "),
	}}, len(unused)
}

// checkModuleBalance reports a mismatch between whole-word module and
// endmodule keyword counts across the file.
func checkModuleBalance(modules, endmodules int) ([]Finding, int) {
	if modules == endmodules {
		return nil, 0
	}
	return []Finding{{
		Category: MismatchedModuleEndmodule,
		Detail:   fmt.Sprintf("module=%d endmodule=%d", modules, endmodules),
	}}, 1
}

// checkBeginEnd compares textual occurrence counts of the begin and end
// markers within the raw block body. This is a count, not a nesting walk.
func checkBeginEnd(block extractor.ProceduralBlock) ([]Finding, int) {
	begins := strings.Count(block.Body, "begin")
	ends := strings.Count(block.Body, "end")
	if begins == ends {
		return nil, 0
	}
	return []Finding{{
		Category:   MismatchedBeginEnd,
		BlockKind:  block.Kind,
		BlockIndex: block.Index,
		Detail:     fmt.Sprintf("begin=%d end=%d", begins, ends),
	}}, 1
}

// checkAssignmentDiscipline reports, line by line, non-blocking assignments
// inside combinational blocks and blocking assignments inside sequential
// blocks. One finding per offending line.
func checkAssignmentDiscipline(block extractor.ProceduralBlock) ([]Finding, int) {
	category := NonBlockingInComb
	violates := func(line string) bool {
		return strings.Contains(line, "<=")
	}
	if block.Kind == extractor.Sequential {
		category = BlockingInSeq
		violates = func(line string) bool {
			return strings.Contains(line, "=") && !strings.Contains(line, "<=")
		}
	}

	var findings []Finding
	for _, line := range strings.Split(block.Body, "\n") {
		if violates(line) {
			findings = append(findings, Finding{
				Category:   category,
				BlockKind:  block.Kind,
				BlockIndex: block.Index,
				Detail:     strings.TrimSpace(line),
			})
		}
	}
	return findings, len(findings)
}

// checkUndeclaredRegs reports assignment targets within the block that have
// no matching reg declaration. Declared reg names may keep range decoration
// while assigned names are bare identifiers, so a ranged reg never matches
// its bare assignment target; that literal comparison is kept as-is.
func checkUndeclaredRegs(block extractor.ProceduralBlock, regs map[string]bool) ([]Finding, int) {
	var undeclared []string
	for name := range extractor.FindAssignedVariables(block.Body) {
		if !regs[name] {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) == 0 {
		return nil, 0
	}
	sort.Strings(undeclared)
	return []Finding{{
		Category:   UndeclaredRegAssignment,
		BlockKind:  block.Kind,
		BlockIndex: block.Index,
		Detail:     strings.Join(undeclared, ", "),
	}}, len(undeclared)
}
