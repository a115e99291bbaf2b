package runner

// The runner orchestrates one lint invocation: discover files, extract and
// analyze them in parallel, validate the data contract, evaluate policy and
// assemble a single LintResult. Checks themselves never print; all rendering
// happens here or in the CLI.

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/verilog-tools/vlint/internal/config"
	"github.com/verilog-tools/vlint/internal/extractor"
	"github.com/verilog-tools/vlint/internal/facts"
	"github.com/verilog-tools/vlint/internal/policy"
	"github.com/verilog-tools/vlint/internal/rules"
	"github.com/verilog-tools/vlint/internal/validator"
)

// Runner runs the lint pipeline over a path.
type Runner struct {
	Config *config.Config
}

// Violation is one reported defect, either from a built-in check or a policy
// rule, after severity mapping.
type Violation struct {
	Rule       string `json:"rule"`
	Severity   string `json:"severity"`
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	BlockKind  string `json:"block_kind,omitempty"`
	BlockIndex int    `json:"block_index,omitempty"`
	Message    string `json:"message"`
}

// FileReport pairs a file with its analysis report.
type FileReport struct {
	Path   string               `json:"path"`
	Report rules.AnalysisReport `json:"report"`
}

// ReadError records a file that could not be read. Boundary errors stay out
// of the analysis engine; they are carried here and surface as a non-zero
// exit.
type ReadError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ResultSummary provides aggregate violation counts.
type ResultSummary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// ExtractionStats provides counts of extracted elements.
type ExtractionStats struct {
	Files      int `json:"files"`
	Ports      int `json:"ports"`
	Regs       int `json:"regs"`
	CombBlocks int `json:"comb_blocks"`
	SeqBlocks  int `json:"seq_blocks"`
}

// LintResult is the structured result of one run, serializable as JSON for
// programmatic consumption.
type LintResult struct {
	Files      []FileReport    `json:"files"`
	Violations []Violation     `json:"violations"`
	ReadErrors []ReadError     `json:"read_errors"`
	Summary    ResultSummary   `json:"summary"`
	Stats      ExtractionStats `json:"stats"`
}

// New creates a Runner with the given configuration.
func New(cfg *config.Config) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{Config: cfg}
}

// Run lints a single file or every Verilog file under a directory.
func (r *Runner) Run(path string) (*LintResult, error) {
	files, err := r.CollectFiles(path)
	if err != nil {
		return nil, err
	}

	result := &LintResult{
		Files:      []FileReport{},
		Violations: []Violation{},
		ReadErrors: []ReadError{},
	}

	allFacts := r.extractParallel(files, result)

	for _, fileFacts := range allFacts {
		report := rules.Evaluate(fileFacts)
		result.Files = append(result.Files, FileReport{Path: fileFacts.File, Report: report})
		result.Violations = append(result.Violations, r.findingViolations(fileFacts.File, report)...)

		result.Stats.Ports += len(fileFacts.Ports)
		result.Stats.Regs += len(fileFacts.Regs)
		result.Stats.CombBlocks += len(fileFacts.CombBlocks)
		result.Stats.SeqBlocks += len(fileFacts.SeqBlocks)
	}
	result.Stats.Files = len(allFacts)

	tables := facts.BuildTables(allFacts)

	factsValidator, err := validator.NewFactsValidator()
	if err != nil {
		return nil, fmt.Errorf("creating facts validator: %w", err)
	}
	if err := factsValidator.Validate(tables); err != nil {
		return nil, fmt.Errorf("fact tables violate schema contract: %w", err)
	}

	if !r.Config.Policy.Disabled {
		engine, err := policy.New(r.Config.Policy.Dir)
		if err != nil {
			return nil, fmt.Errorf("loading policies: %w", err)
		}
		policyResult, err := engine.Evaluate(tables)
		if err != nil {
			return nil, fmt.Errorf("evaluating policies: %w", err)
		}
		result.Violations = append(result.Violations, r.policyViolations(policyResult)...)
	}

	for _, v := range result.Violations {
		result.Summary.TotalViolations++
		switch v.Severity {
		case "error":
			result.Summary.Errors++
		case "warning":
			result.Summary.Warnings++
		default:
			result.Summary.Info++
		}
	}

	reportValidator, err := validator.NewReportValidator()
	if err != nil {
		return nil, fmt.Errorf("creating report validator: %w", err)
	}
	if err := reportValidator.Validate(result); err != nil {
		return nil, fmt.Errorf("lint output violates schema contract: %w", err)
	}

	return result, nil
}

// FactTables extracts and flattens fact tables for every file under path.
// When only is non-empty the tables are restricted to those files, matched
// by full path or base name.
func (r *Runner) FactTables(path string, only []string) (facts.Tables, error) {
	files, err := r.CollectFiles(path)
	if err != nil {
		return facts.Tables{}, err
	}

	var allFacts []extractor.FileFacts
	for _, file := range files {
		fileFacts, err := extractor.ExtractFile(file)
		if err != nil {
			return facts.Tables{}, fmt.Errorf("%s: %w", file, err)
		}
		allFacts = append(allFacts, fileFacts)
	}

	tables := facts.BuildTables(allFacts)
	if len(only) == 0 {
		return tables, nil
	}

	subset := make(map[string]bool)
	for _, row := range tables.Files {
		for _, want := range only {
			if row.Path == want || filepath.Base(row.Path) == want {
				subset[row.Path] = true
			}
		}
	}
	return facts.FilterTablesByFiles(tables, subset), nil
}

// CollectFiles resolves a path into the ordered list of files to lint.
func (r *Runner) CollectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	var files []string
	if !info.IsDir() {
		files = []string{path}
	} else {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(p))
			if ext == ".v" || ext == ".sv" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning files: %w", err)
		}
	}

	var filtered []string
	for _, f := range files {
		if !r.Config.ShouldIgnoreFile(f) {
			filtered = append(filtered, f)
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

// extractParallel extracts facts from every file concurrently, honouring the
// MaxParallelFiles limit. Results come back sorted by path so the rest of
// the pipeline is deterministic.
func (r *Runner) extractParallel(files []string, result *LintResult) []extractor.FileFacts {
	factsChan := make(chan extractor.FileFacts, len(files))
	errChan := make(chan ReadError, len(files))

	var sem chan struct{}
	if n := r.Config.Analysis.MaxParallelFiles; n > 0 {
		sem = make(chan struct{}, n)
	}

	var wg sync.WaitGroup
	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			fileFacts, err := extractor.ExtractFile(f)
			if err != nil {
				errChan <- ReadError{File: f, Message: err.Error()}
				return
			}
			factsChan <- fileFacts
		}(file)
	}
	wg.Wait()
	close(factsChan)
	close(errChan)

	var allFacts []extractor.FileFacts
	for fileFacts := range factsChan {
		allFacts = append(allFacts, fileFacts)
	}
	sort.Slice(allFacts, func(i, j int) bool { return allFacts[i].File < allFacts[j].File })

	for readErr := range errChan {
		result.ReadErrors = append(result.ReadErrors, readErr)
	}
	sort.Slice(result.ReadErrors, func(i, j int) bool {
		return result.ReadErrors[i].File < result.ReadErrors[j].File
	})

	return allFacts
}

// findingViolations maps engine findings onto violations using the
// configured severities. Findings for rules set to "off" are dropped.
func (r *Runner) findingViolations(file string, report rules.AnalysisReport) []Violation {
	violations := []Violation{}
	for _, f := range report.Findings {
		rule := string(f.Category)
		if !r.Config.IsRuleEnabled(rule) {
			continue
		}
		violations = append(violations, Violation{
			Rule:       rule,
			Severity:   r.Config.GetRuleSeverity(rule, config.DefaultSeverities[rule]),
			File:       file,
			BlockKind:  string(f.BlockKind),
			BlockIndex: f.BlockIndex,
			Message:    findingMessage(f),
		})
	}
	return violations
}

func (r *Runner) policyViolations(policyResult *policy.Result) []Violation {
	violations := []Violation{}
	for _, v := range policyResult.Violations {
		if !r.Config.IsRuleEnabled(v.Rule) {
			continue
		}
		violations = append(violations, Violation{
			Rule:     v.Rule,
			Severity: r.Config.GetRuleSeverity(v.Rule, v.Severity),
			File:     v.File,
			Line:     v.Line,
			Message:  v.Message,
		})
	}
	return violations
}

// findingMessage renders a finding as one human-readable line.
func findingMessage(f rules.Finding) string {
	switch f.Category {
	case rules.UnusedPort:
		return fmt.Sprintf("ports declared but not used in logic: %s", f.Detail)
	case rules.NonBlockingInComb:
		return fmt.Sprintf("non-blocking assignment in always @(*) block #%d: %s", f.BlockIndex, f.Detail)
	case rules.BlockingInSeq:
		return fmt.Sprintf("blocking assignment in always @(posedge) block #%d: %s", f.BlockIndex, f.Detail)
	case rules.UndeclaredRegAssignment:
		return fmt.Sprintf("variables assigned in %s block #%d are not declared as reg: %s", f.BlockKind, f.BlockIndex, f.Detail)
	case rules.MismatchedBeginEnd:
		return fmt.Sprintf("mismatched begin-end in %s block #%d (%s)", f.BlockKind, f.BlockIndex, f.Detail)
	case rules.MismatchedModuleEndmodule:
		return fmt.Sprintf("mismatched module and endmodule statements (%s)", f.Detail)
	}
	return f.Detail
}

// RenderText writes the human-readable report.
func (result *LintResult) RenderText(w io.Writer) {
	for _, readErr := range result.ReadErrors {
		fmt.Fprintf(w, "error: %s: %s\n", readErr.File, readErr.Message)
	}

	for _, v := range result.Violations {
		fmt.Fprintf(w, "%s: %s: %s [%s]\n", v.Severity, v.File, v.Message, v.Rule)
	}

	counts := make(map[rules.Category]int)
	for _, f := range result.Files {
		for _, finding := range f.Report.Findings {
			counts[finding.Category]++
		}
	}

	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  - Files checked: %d\n", result.Stats.Files)
	fmt.Fprintf(w, "  - Combinational always blocks checked: %d\n", result.Stats.CombBlocks)
	fmt.Fprintf(w, "  - Sequential always blocks checked: %d\n", result.Stats.SeqBlocks)
	for _, category := range rules.Categories {
		if n := counts[category]; n > 0 {
			fmt.Fprintf(w, "  - %s: %d\n", category, n)
		}
	}
	fmt.Fprintf(w, "  - Violations: %d (%d errors, %d warnings, %d info)\n",
		result.Summary.TotalViolations, result.Summary.Errors,
		result.Summary.Warnings, result.Summary.Info)
}

// RenderFiles writes one line per analyzed file with its finding count. Used
// by verbose mode.
func (result *LintResult) RenderFiles(w io.Writer) {
	for _, f := range result.Files {
		fmt.Fprintf(w, "%s: %d findings\n", f.Path, f.Report.Summary.Total())
	}
}

// HasErrors reports whether the run should exit non-zero.
func (result *LintResult) HasErrors() bool {
	return result.Summary.Errors > 0 || len(result.ReadErrors) > 0
}
