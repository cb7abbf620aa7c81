package runner

// Summary aggregates a replay.
type Summary struct {
	Total          int            `json:"total"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	NewlyCompleted int            `json:"newly_completed"`
	Awards         int            `json:"awards"`
	Errors         int            `json:"errors"`
	Learners       int            `json:"learners"`
	AwardsByBadge  map[string]int `json:"awards_by_badge,omitempty"`
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), AwardsByBadge: make(map[string]int)}
	learners := make(map[string]struct{})
	for _, r := range results {
		learners[r.Submission.LearnerID] = struct{}{}
		if r.Err != nil {
			s.Errors++
		}
		if r.Outcome.Result.Passed {
			s.Passed++
		} else if r.Err == nil {
			s.Failed++
		}
		if r.Outcome.NewlyCompleted {
			s.NewlyCompleted++
		}
		for _, a := range r.Outcome.Awards {
			s.Awards++
			s.AwardsByBadge[a.BadgeName]++
		}
	}
	s.Learners = len(learners)
	return s
}
