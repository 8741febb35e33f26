package validator

// The validators guard what yostat writes for other tools. A mismatch
// between the Go types and the CUE contract is a bug in yostat, so callers
// fail the command instead of writing the file.

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed export_schema.cue
var exportSchemaFS embed.FS

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

// contract is one compiled schema file.
type contract struct {
	ctx    *cue.Context
	schema cue.Value
	label  string
}

func loadContract(fs embed.FS, file, label string) (*contract, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s schema: %w", label, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", label, schema.Err())
	}

	return &contract{ctx: ctx, schema: schema, label: label}, nil
}

func (c *contract) unify(jsonBytes []byte, path string) (cue.Value, error) {
	dataValue := c.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling %s as CUE: %w", c.label, dataValue.Err())
	}

	def := c.schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", path, def.Err())
	}

	return def.Unify(dataValue), nil
}

func (c *contract) validateJSON(jsonBytes []byte, path string) error {
	unified, err := c.unify(jsonBytes, path)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", c.label, err)
	}
	return nil
}

func (c *contract) validate(data interface{}, path string) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s to JSON: %w", c.label, err)
	}
	return c.validateJSON(jsonBytes, path)
}

// errorList returns one line per validation failure, or nil.
func (c *contract) errorList(data interface{}, path string) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}
	unified, err := c.unify(jsonBytes, path)
	if err != nil {
		return []string{err.Error()}
	}
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// ExportValidator validates the JSON export of a design.
type ExportValidator struct {
	c *contract
}

// NewExportValidator creates a validator for design exports.
func NewExportValidator() (*ExportValidator, error) {
	c, err := loadContract(exportSchemaFS, "export_schema.cue", "export")
	if err != nil {
		return nil, err
	}
	return &ExportValidator{c: c}, nil
}

// Validate checks that data (normally a design.ExportDesign) conforms to #Export.
func (v *ExportValidator) Validate(data interface{}) error {
	return v.c.validate(data, "#Export")
}

// ValidateJSON validates an already encoded export.
func (v *ExportValidator) ValidateJSON(jsonBytes []byte) error {
	return v.c.validateJSON(jsonBytes, "#Export")
}

// ValidationErrors returns detailed information about all validation errors.
func (v *ExportValidator) ValidationErrors(data interface{}) []string {
	return v.c.errorList(data, "#Export")
}

// FactsValidator validates relational fact tables and their deltas.
type FactsValidator struct {
	c *contract
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*FactsValidator, error) {
	c, err := loadContract(factsSchemaFS, "facts_schema.cue", "facts")
	if err != nil {
		return nil, err
	}
	return &FactsValidator{c: c}, nil
}

// Validate checks that the fact tables conform to #FactTables.
func (v *FactsValidator) Validate(data interface{}) error {
	return v.c.validate(data, "#FactTables")
}

// ValidateDelta checks that a delta conforms to #FactDelta.
func (v *FactsValidator) ValidateDelta(data interface{}) error {
	return v.c.validate(data, "#FactDelta")
}
