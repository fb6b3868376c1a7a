package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/config.schema.json
var configSchema []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchema))
		if err != nil {
			schemaErr = fmt.Errorf("failed to parse schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.DefaultDraft(jsonschema.Draft2020)
		if err := compiler.AddResource("config.schema.json", doc); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		schema, schemaErr = compiler.Compile("config.schema.json")
	})
	return schema, schemaErr
}

// ValidateYAML checks raw configuration YAML against the schema.
func ValidateYAML(content []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	var data any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if data == nil {
		return nil
	}

	// The validator expects JSON values; go through JSON to normalize
	// numbers and map types.
	asJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert YAML: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return fmt.Errorf("failed to convert YAML: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidateConfig checks a loaded configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.Extension.ID) == "" {
		return fmt.Errorf("extension.id is required")
	}
	if err := ValidateConnector(&cfg.Connector); err != nil {
		return fmt.Errorf("invalid connector: %w", err)
	}
	if cfg.Browser.PlaceholderURL == "" {
		return fmt.Errorf("browser.placeholderURL is required")
	}
	return nil
}

// ValidateConnector checks the connector section.
func ValidateConnector(c *ConnectorConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	// Browsers only accept lowercase dotted host names.
	for _, r := range c.Name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '_') {
			return fmt.Errorf("name %q may only contain lowercase letters, digits, dots and underscores", c.Name)
		}
	}
	if len(c.Command) > 0 && strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("command must start with an executable")
	}
	return nil
}
