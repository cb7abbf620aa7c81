package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.defecthunt/pkg/challenge"
)

// bankFile is the on-disk structure of a challenge-only bank.
type bankFile struct {
	Version    string                 `json:"version" yaml:"version"`
	Challenges []challenge.Definition `json:"challenges" yaml:"challenges"`
}

// Unmarshal decodes data into v, choosing YAML for ".yaml" and
// ".yml" sources and JSON otherwise.
func Unmarshal(source string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

// IsBankFile reports whether name has a supported bank extension.
func IsBankFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDefinitionsFromFile reads a JSON or YAML bank file and
// registers each definition into reg.
func LoadDefinitionsFromFile(reg Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(
			"failed to read definitions file %s: %w", path, err,
		)
	}

	return loadDefinitionsFromBytes(reg, data, path)
}

// LoadDefinitionsFromDir loads all .json and .yaml/.yml bank
// files from a directory in name order. It does not recurse into
// subdirectories.
func LoadDefinitionsFromDir(reg Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf(
			"failed to read directory %s: %w", dir, err,
		)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsBankFile(entry.Name()) {
			continue
		}

		p := filepath.Join(dir, entry.Name())
		if err := LoadDefinitionsFromFile(reg, p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return nil
}

func loadDefinitionsFromBytes(
	reg Registry,
	data []byte,
	source string,
) error {
	var bank bankFile
	if err := Unmarshal(source, data, &bank); err != nil {
		return &challenge.ConfigurationError{
			Subject: "bank " + source,
			Message: "failed to parse definitions: " + err.Error(),
			Err:     err,
		}
	}

	for i := range bank.Challenges {
		def := &bank.Challenges[i]
		if err := reg.Register(def); err != nil {
			return fmt.Errorf(
				"definition %s from %s: %w", def.ID, source, err,
			)
		}
	}

	return nil
}
