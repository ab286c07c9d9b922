// pkg/registry/validate.go
package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateInput checks job variables against the task's registered input
// schema. A task without an input schema accepts anything.
func (t *Task) ValidateInput(data map[string]interface{}) error {
	return validateAgainst(t.InputSchema, data)
}

// ValidateOutput checks a result payload against the registered output
// schema.
func (t *Task) ValidateOutput(data map[string]interface{}) error {
	return validateAgainst(t.OutputSchema, data)
}

func validateAgainst(schema, data map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("input does not match schema: %s", strings.Join(problems, "; "))
}
