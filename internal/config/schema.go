package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	"festive-study/internal/model"
)

const schemaURL = "https://festive-study.local/assumptions.schema.json"

//go:embed assumptions.schema.json
var assumptionsSchema []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(assumptionsSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateAssumptionsYAML checks a YAML (or JSON) assumptions document against
// the schema and returns its JSON form.
func ValidateAssumptionsYAML(content []byte) ([]byte, error) {
	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}
	if err := ValidateAssumptionsJSON(jsonData); err != nil {
		return nil, err
	}
	return jsonData, nil
}

func ValidateAssumptionsJSON(jsonData []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if document == nil {
		return nil
	}
	return sch.Validate(document)
}

// OverlayJSON validates a partial assumptions document and applies it onto base.
// Fields absent from the document keep the base value.
func OverlayJSON(base model.Assumptions, jsonData []byte) (model.Assumptions, error) {
	if len(bytes.TrimSpace(jsonData)) == 0 {
		return base, nil
	}
	if err := ValidateAssumptionsJSON(jsonData); err != nil {
		return base, fmt.Errorf("assumptions schema: %w", err)
	}
	out := base
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return base, fmt.Errorf("decode assumptions: %w", err)
	}
	return out, nil
}
