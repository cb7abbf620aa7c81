package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"digital.vasic.defecthunt/pkg/badge"
	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/predicate"
	"digital.vasic.defecthunt/pkg/registry"
	"digital.vasic.defecthunt/pkg/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T) *registry.DefaultRegistry {
	t.Helper()
	r := registry.NewRegistry()
	for i, id := range []challenge.ID{"c1", "c2", "c3"} {
		require.NoError(t, r.Register(&challenge.Definition{
			ID:          id,
			Name:        []string{"Email field", "Hidden label", "Overlap"}[i],
			Predicate:   predicate.ContainsAnySpec("x"),
			RewardToken: "flag{" + string(id) + "}",
		}))
	}
	r.Freeze()
	return r
}

func newCatalog(t *testing.T) *badge.Catalog {
	t.Helper()
	c := badge.NewCatalog()
	require.NoError(t, c.Register(&badge.Definition{
		Name: "explorer", Description: "All three", Criteria: badge.AtLeast(3),
	}))
	require.NoError(t, c.Register(&badge.Definition{
		Name: "starter", Criteria: badge.AtLeast(1),
	}))
	return c
}

func alice() engine.Progress {
	return engine.Progress{
		LearnerID: "alice",
		Total:     3,
		Completed: []challenge.CompletionRecord{
			{LearnerID: "alice", ChallengeID: "c1", CompletedAt: at},
			{LearnerID: "alice", ChallengeID: "c2", CompletedAt: at},
		},
		Awards: []badge.Award{
			{LearnerID: "alice", BadgeName: "starter", AwardedAt: at},
		},
	}
}

func bob() engine.Progress {
	return engine.Progress{
		LearnerID: "bob",
		Total:     3,
		Completed: []challenge.CompletionRecord{
			{LearnerID: "bob", ChallengeID: "c1", CompletedAt: at},
		},
		Awards: []badge.Award{
			{LearnerID: "bob", BadgeName: "starter", AwardedAt: at},
		},
	}
}

func TestReporters_ImplementInterface(t *testing.T) {
	var _ Reporter = (*JSONReporter)(nil)
	var _ Reporter = (*MarkdownReporter)(nil)
}

func TestNamesFrom(t *testing.T) {
	names := NamesFrom(newRegistry(t))
	assert.Equal(t, "Hidden label", names("c2"))
	assert.Equal(t, "zz", names("zz"))
	assert.Equal(t, "c1", NamesFrom(nil)("c1"))
	assert.Equal(t, "c1", Names(nil).resolve("c1"))
}

func TestJSONReporter_GenerateReport(t *testing.T) {
	p := alice()

	data, err := NewJSONReporter(false).GenerateReport(&p)
	require.NoError(t, err)

	var got engine.Progress
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "alice", got.LearnerID)
	assert.Len(t, got.Completed, 2)
	assert.NotContains(t, string(data), "\n")
}

func TestJSONReporter_Pretty(t *testing.T) {
	p := alice()

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(true).WriteReport(&buf, &p))
	assert.Contains(t, buf.String(), "\n  \"learner_id\": \"alice\"")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))
}

func TestMarkdownReporter_GenerateReport(t *testing.T) {
	p := alice()

	data, err := NewMarkdownReporter(NamesFrom(newRegistry(t))).GenerateReport(&p)
	require.NoError(t, err)

	md := string(data)
	assert.Contains(t, md, "# Progress: alice")
	assert.Contains(t, md, "**Completed:** 2/3")
	assert.Contains(t, md, "| Email field | 2026-03-01T12:00:00Z |")
	assert.Contains(t, md, "| starter | 2026-03-01T12:00:00Z |")
}

func TestMarkdownReporter_Empty(t *testing.T) {
	p := engine.Progress{LearnerID: "carol|x", Total: 3}

	data, err := NewMarkdownReporter(nil).GenerateReport(&p)
	require.NoError(t, err)

	md := string(data)
	assert.Contains(t, md, `# Progress: carol\|x`)
	assert.Contains(t, md, "No challenges completed yet.")
	assert.Contains(t, md, "No badges earned yet.")
}

func TestBuildMasterSummary(t *testing.T) {
	s := BuildMasterSummary(newRegistry(t), newCatalog(t), []engine.Progress{alice(), bob()})

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2, s.Learners)
	assert.Equal(t, 3, s.TotalChallenges)
	assert.Equal(t, 3, s.Completions)
	assert.Equal(t, 2, s.Awards)
	assert.InDelta(t, 0.5, s.AverageProgress, 1e-9)

	require.Len(t, s.Challenges, 3)
	assert.Equal(t, ChallengeSummary{
		ChallengeID: "c1", ChallengeName: "Email field", Completions: 2, CompletionRate: 1,
	}, s.Challenges[0])
	assert.Equal(t, 0, s.Challenges[2].Completions)

	assert.Equal(t, []BadgeSummary{
		{Name: "explorer", Description: "All three", Awards: 0},
		{Name: "starter", Awards: 2},
	}, s.Badges)
}

func TestBuildMasterSummary_Empty(t *testing.T) {
	s := BuildMasterSummary(nil, nil, nil)

	assert.Equal(t, 0, s.Learners)
	assert.Equal(t, float64(0), s.AverageProgress)
	assert.Empty(t, s.Challenges)
	assert.Empty(t, s.Badges)
}

func TestGenerateMasterSummary(t *testing.T) {
	s := BuildMasterSummary(newRegistry(t), newCatalog(t), []engine.Progress{alice(), bob()})

	md, err := NewMarkdownReporter(nil).GenerateMasterSummary(s)
	require.NoError(t, err)
	assert.Contains(t, string(md), "| Email field | 2 | 100% |")
	assert.Contains(t, string(md), "| Average Progress | 50% |")

	js, err := NewJSONReporter(false).GenerateMasterSummary(s)
	require.NoError(t, err)
	var got MasterSummary
	require.NoError(t, json.Unmarshal(js, &got))
	assert.Equal(t, s.Completions, got.Completions)
}

func TestSaveMasterSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := BuildMasterSummary(nil, nil, []engine.Progress{alice()})

	require.NoError(t, SaveMasterSummary(s, dir))

	matches, err := filepath.Glob(filepath.Join(dir, "master_summary_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	matches, err = filepath.Glob(filepath.Join(dir, "master_summary_*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	data, err := os.ReadFile(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	var got MasterSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.ID, got.ID)
}

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	results := []runner.Result{
		{
			Submission: runner.Submission{LearnerID: "alice", ChallengeID: "c1", Input: "secret answer"},
			Outcome: engine.Outcome{
				Result:         challenge.AttemptResult{ChallengeID: "c1", Passed: true},
				NewlyCompleted: true,
				Awards:         []badge.Award{{LearnerID: "alice", BadgeName: "starter"}},
			},
		},
		{
			Submission: runner.Submission{LearnerID: "bob", ChallengeID: "nope"},
			Err:        errors.New("unknown challenge"),
		},
	}
	require.NoError(t, AppendToHistory(path, results, at))
	require.NoError(t, AppendToHistory(path, results[:1], at))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []HistoricalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e HistoricalEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Passed)
	assert.Equal(t, []string{"starter"}, entries[0].Badges)
	assert.Equal(t, "unknown challenge", entries[1].Error)
	assert.Equal(t, at, entries[2].Timestamp)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret answer")
}

func TestAppendToHistory_BadPath(t *testing.T) {
	err := AppendToHistory(filepath.Join(t.TempDir(), "missing", "h.jsonl"), nil, at)
	assert.Error(t, err)
}
