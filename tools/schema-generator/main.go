// Command schema-generator writes the JSON schemas for sigscope.yml and its
// logging extension into schema/.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/logging"
)

func main() {
	outputDir := flag.String("out", "schema", "Directory the schema files are written to")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	configSchema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating config schema: %v", err)
	}
	write(filepath.Join(*outputDir, "sigscope.schema.json"), configSchema)

	loggingSchema, err := generateLoggingSchema()
	if err != nil {
		log.Fatalf("Error generating logging schema: %v", err)
	}
	write(filepath.Join(*outputDir, "logging.schema.json"), loggingSchema)
}

func generateLoggingSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&logging.Config{})
	schema.Title = "sigscope logging configuration"
	schema.Description = "Schema for the 'logging' section of sigscope.yml."
	// Every logging field has a default.
	schema.Required = nil

	return json.MarshalIndent(schema, "", "  ")
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Error writing %s: %v", path, err)
	}
	log.Printf("Generated %s", path)
}
