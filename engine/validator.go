package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// validator checks tool arguments against their declared JSON Schema before
// any handler-specific logic runs. Compiled schemas are cached per tool.
type validator struct {
	cache sync.Map // schema JSON -> *gojsonschema.Schema
}

func (v *validator) validate(schemaData map[string]interface{}, argsJSON string) error {
	schema, err := v.compiled(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(argsJSON))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	descs := make([]string, 0, len(errs))
	for _, desc := range errs {
		descs = append(descs, desc.String())
		if len(descs) == 3 {
			break
		}
	}
	msg := strings.Join(descs, "; ")
	if len(errs) > 3 {
		msg += fmt.Sprintf(" (and %d more)", len(errs)-3)
	}
	return fmt.Errorf("%s", msg)
}

func (v *validator) compiled(schemaData map[string]interface{}) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	key := string(jsonBytes)

	if cached, ok := v.cache.Load(key); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, schema)
	return schema, nil
}
