package bank

import (
	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
)

// File is the on-disk structure of a bank: a versioned snapshot
// of challenges and the badges built on them. It is read from
// JSON or YAML.
type File struct {
	Version    string                 `json:"version" yaml:"version"`
	Name       string                 `json:"name" yaml:"name"`
	Challenges []challenge.Definition `json:"challenges" yaml:"challenges"`
	Badges     []badge.Definition     `json:"badges,omitempty" yaml:"badges,omitempty"`
	Metadata   map[string]any         `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
