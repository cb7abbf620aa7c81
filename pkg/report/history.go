package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.defecthunt/pkg/runner"
)

// HistoricalEntry is one replayed submission in the history log.
// The submitted text is not stored.
type HistoricalEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	LearnerID      string    `json:"learner_id"`
	ChallengeID    string    `json:"challenge_id"`
	Passed         bool      `json:"passed"`
	NewlyCompleted bool      `json:"newly_completed"`
	Badges         []string  `json:"badges,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// NewHistoricalEntry describes res as a history entry.
func NewHistoricalEntry(res runner.Result, at time.Time) HistoricalEntry {
	entry := HistoricalEntry{
		Timestamp:      at.UTC(),
		LearnerID:      res.Submission.LearnerID,
		ChallengeID:    string(res.Submission.ChallengeID),
		Passed:         res.Outcome.Result.Passed,
		NewlyCompleted: res.Outcome.NewlyCompleted,
	}
	for _, a := range res.Outcome.Awards {
		entry.Badges = append(entry.Badges, a.BadgeName)
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	return entry
}

// AppendToHistory adds one JSON line per result to the history
// log at historyPath.
func AppendToHistory(
	historyPath string,
	results []runner.Result,
	at time.Time,
) error {
	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	for _, res := range results {
		if err := enc.Encode(NewHistoricalEntry(res, at)); err != nil {
			return fmt.Errorf(
				"failed to write history entry: %w", err,
			)
		}
	}
	return nil
}
