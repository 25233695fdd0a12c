package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "file://schema/render.schema.json"

//go:embed schema/render.schema.json
var renderSchema []byte

var (
	once    sync.Once
	schema  *jsonschema.Schema
	loadErr error
)

func load() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(renderSchema)); err != nil {
		loadErr = err
		return
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		loadErr = err
		return
	}
	schema = s
}

// ValidateMap validates a generic map against the render request schema.
func ValidateMap(m map[string]any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return ValidateJSON(b)
}

// ValidateJSON validates a raw render request body.
func ValidateJSON(b []byte) error {
	once.Do(load)
	if loadErr != nil {
		return loadErr
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("request is not valid JSON: %w", err)
	}
	return schema.Validate(v)
}
