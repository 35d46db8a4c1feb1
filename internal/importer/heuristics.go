package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"recipebox/internal/classify"
	"recipebox/internal/normalize"
)

// Heuristics are the tunable keyword tables of the pipeline.
type Heuristics struct {
	Classifier classify.Tables       `yaml:"classifier"`
	Headers    normalize.HeaderRules `yaml:"headers"`
	Synonyms   map[string]string     `yaml:"synonyms"`
}

// DefaultHeuristics returns the built-in tables.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Classifier: classify.DefaultTables(),
		Headers:    normalize.DefaultHeaderRules(),
	}
}

// LoadHeuristics reads a YAML file and lays it over the defaults. Lists set
// in the file replace the built-in ones; synonyms extend the seed table. An
// empty path returns the defaults.
func LoadHeuristics(path string) (Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("failed to read heuristics file: %w", err)
	}
	return ParseHeuristics(data)
}

// ParseHeuristics decodes YAML heuristics over the defaults.
func ParseHeuristics(data []byte) (Heuristics, error) {
	h := DefaultHeuristics()
	var over Heuristics
	if err := yaml.Unmarshal(data, &over); err != nil {
		return h, fmt.Errorf("failed to parse heuristics: %w", err)
	}
	h.Classifier.Merge(over.Classifier)
	h.Headers.Merge(over.Headers)
	h.Synonyms = over.Synonyms
	return h, nil
}
