package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled planner schemas by name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// checkOutput is the shared post-processing of every adapter. A response
// cut off at the token limit is reported as such rather than as invalid
// JSON, since re-asking with the same budget would be cut off again.
func checkOutput(req Request, content json.RawMessage, stopReason string) error {
	if stopReason == "max_tokens" {
		return &ErrMaxTokensExceeded{Limit: req.MaxTokens, Content: content}
	}
	return validateResponse(req.Schema, content)
}

// validateResponse checks raw against schema. A nil schema accepts
// anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(err error) error {
		return &ErrInvalidResponse{Schema: schema.Name, Content: raw, Err: err}
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(fmt.Errorf("not JSON: %w", err))
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return invalid(err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON values, not Go literals such as
	// []string, so round-trip the definition.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "goalpath://schemas/" + schema.Name + ".json"
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
