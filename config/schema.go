package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for sigscope.yml. Extensions are
// not part of the schema; they are validated by whoever consumes them.
func GenerateSchema() ([]byte, error) {
	schema := reflectSchema()
	return json.MarshalIndent(schema, "", "  ")
}

func reflectSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		Anonymous:                 true,
	}

	schema := r.Reflect(&Config{})
	schema.Title = "sigscope configuration"
	schema.Description = "Schema for sigscope.yml and sigscope.toml."
	return schema
}
