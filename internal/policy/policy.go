package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"

	"github.com/verilog-tools/vlint/internal/facts"
)

//go:embed policies/*.rego
var defaultPolicies embed.FS

// Engine evaluates Rego policies against the extracted fact tables. The
// built-in rules ship embedded; a policy directory from the config replaces
// them entirely.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation is one policy rule hit.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// Result contains the evaluation results.
type Result struct {
	Violations []Violation
	Summary    Summary
}

// Summary provides aggregate counts.
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// New creates a policy engine. With an empty policyDir the embedded default
// rules are loaded; otherwise every .rego file in the directory is used
// instead.
func New(policyDir string) (*Engine, error) {
	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}

	engine := &Engine{queries: make(map[string]rego.PreparedEvalQuery)}

	opts := append(modules, rego.Query("data.verilog.lint.all_violations"))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	engine.queries["violations"] = query

	opts = append(modules, rego.Query("data.verilog.lint.summary"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}
	engine.queries["summary"] = query

	return engine, nil
}

func loadModules(policyDir string) ([]func(*rego.Rego), error) {
	var modules []func(*rego.Rego)

	if policyDir == "" {
		entries, err := defaultPolicies.ReadDir("policies")
		if err != nil {
			return nil, fmt.Errorf("reading embedded policies: %w", err)
		}
		for _, entry := range entries {
			content, err := defaultPolicies.ReadFile(filepath.Join("policies", entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("reading embedded policy %s: %w", entry.Name(), err)
			}
			modules = append(modules, rego.Module(entry.Name(), string(content)))
		}
		return modules, nil
	}

	paths, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, fmt.Errorf("finding policy files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no policy files found in %s", policyDir)
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		modules = append(modules, rego.Module(path, string(content)))
	}
	return modules, nil
}

// Evaluate runs the policies against the fact tables.
func (e *Engine) Evaluate(input facts.Tables) (*Result, error) {
	ctx := context.Background()

	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if violations, ok := rs[0].Expressions[0].Value.([]interface{}); ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					File:     getString(vmap, "file"),
					Line:     getInt(vmap, "line"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if smap, ok := rs[0].Expressions[0].Value.(map[string]interface{}); ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func getString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
