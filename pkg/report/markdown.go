package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"digital.vasic.defecthunt/pkg/engine"
)

// MarkdownReporter generates Markdown reports.
type MarkdownReporter struct {
	names Names
}

// NewMarkdownReporter creates a Markdown reporter. names may be
// nil, in which case challenge IDs are shown.
func NewMarkdownReporter(names Names) *MarkdownReporter {
	return &MarkdownReporter{names: names}
}

// GenerateReport creates a Markdown report for one learner.
func (r *MarkdownReporter) GenerateReport(
	p *engine.Progress,
) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes a Markdown report to w.
func (r *MarkdownReporter) WriteReport(
	w io.Writer,
	p *engine.Progress,
) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Progress: %s\n\n", escapeCell(p.LearnerID))
	fmt.Fprintf(&sb, "**Completed:** %d/%d\n\n", len(p.Completed), p.Total)

	sb.WriteString("## Challenges\n\n")
	if len(p.Completed) == 0 {
		sb.WriteString("No challenges completed yet.\n")
	} else {
		sb.WriteString("| Challenge | Completed At |\n")
		sb.WriteString("|-----------|--------------|\n")
		for _, rec := range p.Completed {
			fmt.Fprintf(&sb, "| %s | %s |\n",
				escapeCell(r.names.resolve(rec.ChallengeID)),
				rec.CompletedAt.Format(time.RFC3339),
			)
		}
	}

	sb.WriteString("\n## Badges\n\n")
	if len(p.Awards) == 0 {
		sb.WriteString("No badges earned yet.\n")
	} else {
		sb.WriteString("| Badge | Awarded At |\n")
		sb.WriteString("|-------|------------|\n")
		for _, a := range p.Awards {
			fmt.Fprintf(&sb, "| %s | %s |\n",
				escapeCell(a.BadgeName),
				a.AwardedAt.Format(time.RFC3339),
			)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// GenerateMasterSummary renders s as Markdown.
func (r *MarkdownReporter) GenerateMasterSummary(
	s *MasterSummary,
) ([]byte, error) {
	return []byte(generateSummaryMarkdown(s)), nil
}

// escapeCell keeps learner-controlled text from breaking a table
// row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
