// Package report renders learner progress and cohort summaries.
package report

import (
	"io"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/registry"
)

// Reporter defines the interface for generating progress reports.
type Reporter interface {
	// GenerateReport creates a report for one learner.
	GenerateReport(p *engine.Progress) ([]byte, error)

	// GenerateMasterSummary renders a summary across learners.
	GenerateMasterSummary(s *MasterSummary) ([]byte, error)

	// WriteReport writes a learner report to the specified
	// writer.
	WriteReport(w io.Writer, p *engine.Progress) error
}

// Names resolves a challenge's display name.
type Names func(id challenge.ID) string

// NamesFrom resolves names through reg, falling back to the ID
// for unknown challenges or a nil registry.
func NamesFrom(reg registry.Registry) Names {
	return func(id challenge.ID) string {
		if reg == nil {
			return string(id)
		}
		def, err := reg.Get(id)
		if err != nil || def.Name == "" {
			return string(id)
		}
		return def.Name
	}
}

func (n Names) resolve(id challenge.ID) string {
	if n == nil {
		return string(id)
	}
	return n(id)
}
