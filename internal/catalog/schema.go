// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the level schema.
const SchemaID = "https://holomush.dev/schemas/level.schema.json"

var compiledSchema = sync.OnceValues(compileSchema)

// GenerateSchema generates the JSON Schema for level documents.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Fountain Level"
	schema.Description = "Scene objects, task triggers and a timed stimulus script"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("catalog").Code(CodeSchema).Wrapf(err, "marshal schema")
	}
	return data, nil
}

// ValidateSchema checks YAML level data against the generated schema. It
// catches shape errors only; Parse runs the semantic checks.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.In("catalog").Code(CodeEmpty).Errorf("level data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.In("catalog").Code(CodeYAML).Wrapf(err, "invalid YAML")
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.In("catalog").Code(CodeSchema).Wrapf(err, "schema validation failed")
	}
	return nil
}

func compileSchema() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, oops.In("catalog").Code(CodeSchema).Wrapf(err, "parse schema")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("level.schema.json", doc); err != nil {
		return nil, oops.In("catalog").Code(CodeSchema).Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile("level.schema.json")
	if err != nil {
		return nil, oops.In("catalog").Code(CodeSchema).Wrapf(err, "compile schema")
	}
	return sch, nil
}

// toJSONTypes normalizes YAML-decoded values into the shapes the validator
// expects.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var out any
			if json.Unmarshal(b, &out) == nil {
				return out
			}
		}
		return val
	}
}

// FormatSchemaError trims the wrapping from a schema validation error for
// display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	return strings.TrimPrefix(msg, "schema validation failed: ")
}
