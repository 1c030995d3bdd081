package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_texts.yaml
var defaultTextsYAML []byte

// DefaultTexts returns the built-in texts.
func DefaultTexts() (*Texts, error) {
	return parseTexts(defaultTextsYAML, "embedded defaults")
}

// LoadTexts reads texts from filePath. Keys missing from the file keep their
// default values; an empty filePath yields the defaults.
func LoadTexts(filePath string) (*Texts, error) {
	if filePath == "" {
		log.Printf("[LoadTexts] BOT_TEXTS_FILE not set, using embedded defaults")
		return DefaultTexts()
	}

	log.Printf("[LoadTexts] Loading texts from %s...", filePath)
	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read texts file '%s': %w", filePath, err)
	}
	return parseTexts(yamlFile, filePath)
}

func parseTexts(override []byte, source string) (*Texts, error) {
	var texts Texts
	if err := yaml.Unmarshal(defaultTextsYAML, &texts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default texts: %w", err)
	}
	if err := yaml.Unmarshal(override, &texts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML from '%s': %w", source, err)
	}
	if err := texts.Validate(); err != nil {
		return nil, fmt.Errorf("texts validation failed for '%s': %w", source, err)
	}
	return &texts, nil
}
