package extractor

import (
	"fmt"
	"os"
	"regexp"
)

// BlockKind classifies a procedural block by its trigger.
type BlockKind string

const (
	// Combinational marks an always @(*) block (level-sensitive wildcard list).
	Combinational BlockKind = "combinational"
	// Sequential marks an always @(posedge ...) block (edge-triggered).
	Sequential BlockKind = "sequential"
)

// PortDecl is a declared input/output port.
type PortDecl struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Line      int    `json:"line"`
}

// RegDecl is a declared reg. Name keeps range decoration as written in the
// source, e.g. "data[7:0]".
type RegDecl struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// ProceduralBlock is one always block body captured as a raw text span.
// Index is 1-based within blocks of the same kind. The span is either a
// single terminated statement or a begin..end body; nesting balance is not
// verified here so that malformed bodies still reach the rule checks.
type ProceduralBlock struct {
	Kind  BlockKind `json:"kind"`
	Index int       `json:"index"`
	Line  int       `json:"line"`
	Body  string    `json:"body"`
}

// FileFacts contains everything extracted from one source text.
type FileFacts struct {
	File           string
	Ports          []PortDecl
	Regs           []RegDecl
	UsedIdents     map[string]bool
	CombBlocks     []ProceduralBlock
	SeqBlocks      []ProceduralBlock
	ModuleCount    int
	EndmoduleCount int
}

// PortNames returns the declared port names as a set.
func (f FileFacts) PortNames() map[string]bool {
	names := make(map[string]bool, len(f.Ports))
	for _, p := range f.Ports {
		names[p.Name] = true
	}
	return names
}

// RegNames returns the declared reg names (range decoration included) as a set.
func (f FileFacts) RegNames() map[string]bool {
	names := make(map[string]bool, len(f.Regs))
	for _, r := range f.Regs {
		names[r.Name] = true
	}
	return names
}

// Extract runs all pattern matchers over the text. Pure function of its
// input: no shared state, safe to call concurrently.
func Extract(text string) FileFacts {
	facts := FileFacts{
		Ports:      FindPortDecls(text),
		Regs:       FindDeclaredRegs(text),
		UsedIdents: FindLogicUsage(text),
	}
	facts.CombBlocks, facts.SeqBlocks = Segment(text)
	facts.ModuleCount, facts.EndmoduleCount = CountModuleKeywords(text)
	return facts
}

// ExtractFile reads a file and extracts facts from its contents.
func ExtractFile(path string) (FileFacts, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileFacts{}, fmt.Errorf("reading file: %w", err)
	}
	facts := Extract(string(content))
	facts.File = path
	return facts, nil
}

// Segment isolates the procedural block bodies of both kinds, in textual
// order. Each body is a raw span; a body may be malformed and is still
// returned so the checks can report on it instead of rejecting it here.
func Segment(text string) (comb, seq []ProceduralBlock) {
	comb = segmentKind(text, Combinational, combBlockPattern)
	seq = segmentKind(text, Sequential, seqBlockPattern)
	return comb, seq
}

func segmentKind(text string, kind BlockKind, pattern *regexp.Regexp) []ProceduralBlock {
	var blocks []ProceduralBlock
	for i, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		blocks = append(blocks, ProceduralBlock{
			Kind:  kind,
			Index: i + 1,
			Line:  lineAt(text, m[0]),
			Body:  text[m[2]:m[3]],
		})
	}
	return blocks
}
