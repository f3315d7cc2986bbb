package extractor

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/invoice.json
var schemaFS embed.FS

var (
	invoiceSchemaOnce sync.Once
	invoiceSchema     *jsonschema.Schema
	invoiceSchemaErr  error
)

// compiledSchema returns the invoice extraction schema, compiled once.
func compiledSchema() (*jsonschema.Schema, error) {
	invoiceSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/invoice.json")
		if err != nil {
			invoiceSchemaErr = fmt.Errorf("failed to read invoice schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("invoice.json", bytes.NewReader(raw)); err != nil {
			invoiceSchemaErr = fmt.Errorf("failed to load invoice schema: %w", err)
			return
		}
		invoiceSchema, invoiceSchemaErr = compiler.Compile("invoice.json")
	})
	return invoiceSchema, invoiceSchemaErr
}

// validateShape checks the parsed payload against the extraction schema.
// The schema is deliberately loose about value types (model output is coerced
// downstream); what it enforces is the document shape: a JSON object with a
// products array of objects.
func validateShape(raw json.RawMessage) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse structured output: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("model output does not match invoice shape: %w", err)
	}
	return nil
}
