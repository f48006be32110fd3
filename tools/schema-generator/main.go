package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/grovetools/devdash/config"
	"github.com/invopop/jsonschema"
)

func main() {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&config.Config{})
	schema.Title = "Developer Dashboard (devdash) Configuration"
	schema.Description = "Schema for the '" + config.ExtensionName + "' extension in grove.yml and for ~/.config/devdash/config.yaml."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	if err := os.WriteFile("devdash.schema.json", data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated devdash schema at devdash.schema.json")
}
