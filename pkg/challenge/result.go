package challenge

import "time"

// AttemptResult is the verdict on a single learner input. It is
// produced fresh by every evaluation and never stored.
type AttemptResult struct {
	// ChallengeID is the challenge the input was judged against.
	ChallengeID ID `json:"challenge_id"`

	// Passed indicates whether the acceptance predicate held.
	Passed bool `json:"passed"`

	// NormalizedInput is the input after lower-casing and
	// trimming.
	NormalizedInput string `json:"normalized_input"`

	// RewardToken is the challenge's flag. It is set if and
	// only if Passed is true.
	RewardToken string `json:"reward_token,omitempty"`
}

// HasReward returns true if the attempt revealed a reward token.
func (r AttemptResult) HasReward() bool {
	return r.Passed && r.RewardToken != ""
}

// CompletionRecord is the durable fact that a learner has passed
// a challenge. There is at most one per learner and challenge.
type CompletionRecord struct {
	LearnerID   string    `json:"learner_id"`
	ChallengeID ID        `json:"challenge_id"`
	CompletedAt time.Time `json:"completed_at"`
}
