package report

import (
	"encoding/json"
	"io"

	"digital.vasic.defecthunt/pkg/engine"
)

// JSONReporter generates JSON reports.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// GenerateReport creates a JSON report for one learner.
func (r *JSONReporter) GenerateReport(
	p *engine.Progress,
) ([]byte, error) {
	return r.marshal(p)
}

// GenerateMasterSummary creates a JSON document from s.
func (r *JSONReporter) GenerateMasterSummary(
	s *MasterSummary,
) ([]byte, error) {
	return r.marshal(s)
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(
	w io.Writer,
	p *engine.Progress,
) error {
	data, err := r.GenerateReport(p)
	if err != nil {
		return err
	}
	if r.pretty {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
