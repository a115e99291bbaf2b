package extractor

import (
	"regexp"
)

var (
	// Pattern: input/output [range] <name>
	portPattern = regexp.MustCompile(`\b(input|output)\b\s+(?:\[.*?\]\s+)?(\w+)`)

	// Pattern: <identifier> followed by an assignment or operator token
	usagePattern = regexp.MustCompile(`\b(\w+)\b\s*(?:=|<=|==|!=|&|\||\^|~|\+|-|\*|/|%)`)

	// Pattern: reg <name>, range decoration kept as part of the captured name
	regPattern = regexp.MustCompile(`\breg\b\s+([\w\[\]:]+)`)

	// Pattern: <identifier> as assignment target (blocking or non-blocking)
	assignPattern = regexp.MustCompile(`\b(\w+)\b\s*(?:<=|=)`)

	// Pattern: always @(*) <single statement | begin..end body>
	combBlockPattern = regexp.MustCompile(`(?s)always\s*@\(\*\)\s*(begin.*?end|[^;]*;)`)

	// Pattern: always @(posedge ...) <single statement | begin..end body>
	seqBlockPattern = regexp.MustCompile(`(?s)always\s*@\(posedge.*?\)\s*(begin.*?end|[^;]*;)`)

	modulePattern    = regexp.MustCompile(`\bmodule\b`)
	endmodulePattern = regexp.MustCompile(`\bendmodule\b`)
)

// FindPorts returns the set of port names declared with input/output keywords.
// An optional bracketed range between the keyword and the name is skipped.
func FindPorts(text string) map[string]bool {
	ports := make(map[string]bool)
	for _, m := range portPattern.FindAllStringSubmatch(text, -1) {
		ports[m[2]] = true
	}
	return ports
}

// FindPortDecls returns port declarations in textual order, with direction
// and 1-based line number. Duplicate declarations are kept.
func FindPortDecls(text string) []PortDecl {
	var decls []PortDecl
	for _, m := range portPattern.FindAllStringSubmatchIndex(text, -1) {
		decls = append(decls, PortDecl{
			Direction: text[m[2]:m[3]],
			Name:      text[m[4]:m[5]],
			Line:      lineAt(text, m[0]),
		})
	}
	return decls
}

// FindLogicUsage returns the set of identifiers that appear immediately
// before an assignment or operator token anywhere in the text.
func FindLogicUsage(text string) map[string]bool {
	used := make(map[string]bool)
	for _, m := range usagePattern.FindAllStringSubmatch(text, -1) {
		used[m[1]] = true
	}
	return used
}

// FindDeclaredRegs returns reg declarations in textual order. The captured
// name keeps any bracket/range characters exactly as written; it is not
// normalized to a bare identifier.
func FindDeclaredRegs(text string) []RegDecl {
	var decls []RegDecl
	for _, m := range regPattern.FindAllStringSubmatchIndex(text, -1) {
		decls = append(decls, RegDecl{
			Name: text[m[2]:m[3]],
			Line: lineAt(text, m[0]),
		})
	}
	return decls
}

// FindAssignedVariables returns the set of identifiers used as the target of
// a blocking or non-blocking assignment within a block body.
func FindAssignedVariables(body string) map[string]bool {
	assigned := make(map[string]bool)
	for _, m := range assignPattern.FindAllStringSubmatch(body, -1) {
		assigned[m[1]] = true
	}
	return assigned
}

// FindBlocks returns the raw block bodies matched by the given block-kind
// pattern, in textual order. The pattern is responsible for delimiting
// matches; overlapping or nested blocks of the same kind are not handled
// specially.
func FindBlocks(text string, pattern *regexp.Regexp) []string {
	var bodies []string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		bodies = append(bodies, m[1])
	}
	return bodies
}

// CountModuleKeywords returns whole-word occurrence counts of the module and
// endmodule keywords across the entire text.
func CountModuleKeywords(text string) (modules, endmodules int) {
	return len(modulePattern.FindAllStringIndex(text, -1)),
		len(endmodulePattern.FindAllStringIndex(text, -1))
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(text string, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
		}
	}
	return line
}
