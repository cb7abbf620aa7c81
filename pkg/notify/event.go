// Package notify delivers reward and badge events to whatever
// presents them. Delivery is fire-and-forget: a Sink never returns
// an error to the engine and must not block it for long.
package notify

import (
	"time"

	"digital.vasic.defecthunt/pkg/challenge"

	"github.com/google/uuid"
)

// Kind distinguishes reward events from badge events.
type Kind string

const (
	// KindReward is emitted once when a learner first completes a
	// challenge.
	KindReward Kind = "reward"
	// KindBadge is emitted once when a learner unlocks a badge.
	KindBadge Kind = "badge"
)

// Payload carries the presentation data for an event. Reward
// events fill ChallengeID and RewardToken; badge events fill the
// Badge fields.
type Payload struct {
	ChallengeID      challenge.ID `json:"challenge_id,omitempty"`
	RewardToken      string       `json:"reward_token,omitempty"`
	BadgeName        string       `json:"badge_name,omitempty"`
	BadgeDescription string       `json:"badge_description,omitempty"`
	IconURL          string       `json:"icon_url,omitempty"`
}

// Event is a single notification.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	LearnerID string    `json:"learner_id"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRewardEvent builds a reward event for learnerID.
func NewRewardEvent(
	learnerID string,
	challengeID challenge.ID,
	rewardToken string,
) Event {
	return newEvent(KindReward, learnerID, Payload{
		ChallengeID: challengeID,
		RewardToken: rewardToken,
	})
}

// NewBadgeEvent builds a badge event for learnerID.
func NewBadgeEvent(
	learnerID, name, description, iconURL string,
) Event {
	return newEvent(KindBadge, learnerID, Payload{
		BadgeName:        name,
		BadgeDescription: description,
		IconURL:          iconURL,
	})
}

func newEvent(kind Kind, learnerID string, p Payload) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		LearnerID: learnerID,
		Payload:   p,
		Timestamp: time.Now().UTC(),
	}
}
