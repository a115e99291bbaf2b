package validator

// The CUE validator is the contract guard between extraction and policy
// evaluation. If the fact tables or the lint output stop matching the
// embedded schemas, we crash immediately with a clear error rather than let
// policy rules silently receive bad data.

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

//go:embed report_schema.cue
var reportSchemaFS embed.FS

// FactsValidator validates relational fact tables against the facts schema.
type FactsValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewFactsValidator creates a validator with the embedded facts schema.
func NewFactsValidator() (*FactsValidator, error) {
	ctx, schema, err := compileSchema(factsSchemaFS, "facts_schema.cue")
	if err != nil {
		return nil, err
	}
	return &FactsValidator{ctx: ctx, schema: schema}, nil
}

// Validate checks that the fact tables conform to #FactTables.
func (v *FactsValidator) Validate(data interface{}) error {
	return validateAgainst(v.ctx, v.schema, data, "#FactTables")
}

// ValidationErrors returns detailed information about all validation errors,
// or nil when the data is valid.
func (v *FactsValidator) ValidationErrors(data interface{}) []string {
	err := v.Validate(data)
	if err == nil {
		return nil
	}
	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// ReportValidator validates lint output against the report schema.
type ReportValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewReportValidator creates a validator with the embedded report schema.
func NewReportValidator() (*ReportValidator, error) {
	ctx, schema, err := compileSchema(reportSchemaFS, "report_schema.cue")
	if err != nil {
		return nil, err
	}
	return &ReportValidator{ctx: ctx, schema: schema}, nil
}

// Validate checks that the lint output conforms to #LintOutput.
func (v *ReportValidator) Validate(data interface{}) error {
	return validateAgainst(v.ctx, v.schema, data, "#LintOutput")
}

// ValidateReport checks a single per-file analysis report against
// #AnalysisReport.
func (v *ReportValidator) ValidateReport(data interface{}) error {
	return validateAgainst(v.ctx, v.schema, data, "#AnalysisReport")
}

func compileSchema(fsys embed.FS, name string) (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fsys.ReadFile(name)
	if err != nil {
		return nil, cue.Value{}, fmt.Errorf("loading embedded schema %s: %w", name, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, cue.Value{}, fmt.Errorf("compiling schema %s: %w", name, schema.Err())
	}
	return ctx, schema, nil
}

func validateAgainst(ctx *cue.Context, schema cue.Value, data interface{}, path string) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}

	dataValue := ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	def := schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", path, def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
