package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/registry"
)

// MasterSummary aggregates the progress of many learners.
type MasterSummary struct {
	ID              string             `json:"id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Learners        int                `json:"learners"`
	TotalChallenges int                `json:"total_challenges"`
	Completions     int                `json:"completions"`
	Awards          int                `json:"awards"`
	AverageProgress float64            `json:"average_progress"`
	Challenges      []ChallengeSummary `json:"challenges"`
	Badges          []BadgeSummary     `json:"badges"`
}

// ChallengeSummary counts the learners who completed a challenge.
type ChallengeSummary struct {
	ChallengeID    challenge.ID `json:"challenge_id"`
	ChallengeName  string       `json:"challenge_name"`
	Completions    int          `json:"completions"`
	CompletionRate float64      `json:"completion_rate"`
}

// BadgeSummary counts the learners holding a badge.
type BadgeSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Awards      int    `json:"awards"`
}

// BuildMasterSummary aggregates progress. reg and catalog are
// optional; when given, challenges and badges nobody has earned
// still get a row.
func BuildMasterSummary(
	reg registry.Registry,
	catalog *badge.Catalog,
	progress []engine.Progress,
) *MasterSummary {
	now := time.Now()
	summary := &MasterSummary{
		ID:          fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt: now,
		Learners:    len(progress),
	}

	completions := make(map[challenge.ID]int)
	awards := make(map[string]int)
	descriptions := make(map[string]string)

	if reg != nil {
		summary.TotalChallenges = reg.Count()
		for _, def := range reg.List() {
			completions[def.ID] = 0
		}
	}
	if catalog != nil {
		for _, def := range catalog.List() {
			awards[def.Name] = 0
			descriptions[def.Name] = def.Description
		}
	}

	var progressSum float64
	for _, p := range progress {
		for _, rec := range p.Completed {
			completions[rec.ChallengeID]++
			summary.Completions++
		}
		for _, a := range p.Awards {
			awards[a.BadgeName]++
			summary.Awards++
		}
		if p.Total > summary.TotalChallenges {
			summary.TotalChallenges = p.Total
		}
		if p.Total > 0 {
			progressSum += float64(len(p.Completed)) / float64(p.Total)
		}
	}
	if len(progress) > 0 {
		summary.AverageProgress = progressSum / float64(len(progress))
	}

	names := NamesFrom(reg)
	ids := make([]challenge.ID, 0, len(completions))
	for id := range completions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	summary.Challenges = make([]ChallengeSummary, 0, len(ids))
	for _, id := range ids {
		cs := ChallengeSummary{
			ChallengeID:   id,
			ChallengeName: names(id),
			Completions:   completions[id],
		}
		if len(progress) > 0 {
			cs.CompletionRate = float64(cs.Completions) / float64(len(progress))
		}
		summary.Challenges = append(summary.Challenges, cs)
	}

	badgeNames := make([]string, 0, len(awards))
	for name := range awards {
		badgeNames = append(badgeNames, name)
	}
	sort.Strings(badgeNames)
	summary.Badges = make([]BadgeSummary, 0, len(badgeNames))
	for _, name := range badgeNames {
		summary.Badges = append(summary.Badges, BadgeSummary{
			Name:        name,
			Description: descriptions[name],
			Awards:      awards[name],
		})
	}

	return summary
}

// SaveMasterSummary saves the master summary to both JSON and
// Markdown files in the given output directory and points the
// latest_summary links at them.
func SaveMasterSummary(
	summary *MasterSummary,
	outputDir string,
) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.json", ts),
	)
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf(
			"failed to marshal summary: %w", err,
		)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(generateSummaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

func generateSummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Defect Hunt - Cohort Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Challenges\n\n")
	sb.WriteString("| Challenge | Completions | Rate |\n")
	sb.WriteString("|-----------|-------------|------|\n")
	for _, c := range summary.Challenges {
		fmt.Fprintf(&sb, "| %s | %d | %.0f%% |\n",
			escapeCell(c.ChallengeName), c.Completions, c.CompletionRate*100)
	}

	sb.WriteString("\n## Badges\n\n")
	sb.WriteString("| Badge | Awards |\n")
	sb.WriteString("|-------|--------|\n")
	for _, b := range summary.Badges {
		fmt.Fprintf(&sb, "| %s | %d |\n", escapeCell(b.Name), b.Awards)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Learners | %d |\n", summary.Learners)
	fmt.Fprintf(&sb, "| Challenges | %d |\n", summary.TotalChallenges)
	fmt.Fprintf(&sb, "| Completions | %d |\n", summary.Completions)
	fmt.Fprintf(&sb, "| Badge Awards | %d |\n", summary.Awards)
	fmt.Fprintf(&sb, "| Average Progress | %.0f%% |\n",
		summary.AverageProgress*100)

	sb.WriteString("\n---\n\n")
	sb.WriteString("*Generated by defecthunt*\n")

	return sb.String()
}
