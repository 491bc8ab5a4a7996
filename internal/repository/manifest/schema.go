package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
)

//go:embed schema.json
var schemaJSON []byte

// ErrSchemaViolation is returned when a manifest does not match the schema.
var ErrSchemaViolation = errors.New("manifest does not match schema")

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// compiledSchema is the parsed form of schema.json.
//
//nolint:gochecknoglobals // Compiled once; the schema is immutable.
var compiledSchema = mustCompile(schemaJSON)

func mustCompile(data []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("compile manifest schema: %v", err))
	}

	return schema
}

// Validate checks a manifest value against the embedded schema.
func Validate(m domain.Manifest) ([]ValidationError, error) {
	if m == nil {
		m = domain.Manifest{}
	}

	return validate(gojsonschema.NewGoLoader(normalize(m)))
}

// ValidateBytes checks a raw manifest document against the embedded schema.
func ValidateBytes(data []byte) ([]ValidationError, error) {
	return validate(gojsonschema.NewBytesLoader(data))
}

// AsError folds violations into a single ErrSchemaViolation, or returns nil.
func AsError(violations []ValidationError) error {
	if len(violations) == 0 {
		return nil
	}

	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Path+": "+v.Message)
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

func validate(doc gojsonschema.JSONLoader) ([]ValidationError, error) {
	result, err := compiledSchema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))

	for _, e := range result.Errors() {
		field := e.Field()
		if field == "" {
			field = "(root)"
		}

		violations = append(violations, ValidationError{
			Path:    field,
			Message: e.Description(),
		})
	}

	return violations, nil
}
