package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRewardEvent(t *testing.T) {
	e := NewRewardEvent("alice", "c1", "flag{testerska-flaga-1}")

	assert.Equal(t, KindReward, e.Kind)
	assert.Equal(t, "alice", e.LearnerID)
	assert.Equal(t, "flag{testerska-flaga-1}", e.Payload.RewardToken)
	assert.Empty(t, e.Payload.BadgeName)
	assert.False(t, e.Timestamp.IsZero())
	_, err := uuid.Parse(e.ID)
	assert.NoError(t, err)
}

func TestNewBadgeEvent_JSON(t *testing.T) {
	e := NewBadgeEvent("bob", "explorer", "Solve any three", "/icons/explorer.png")

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "badge", m["kind"])
	assert.Equal(t, "bob", m["learner_id"])

	payload := m["payload"].(map[string]any)
	assert.Equal(t, "explorer", payload["badge_name"])
	assert.NotContains(t, payload, "reward_token")
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewRewardEvent("alice", "c1", "t")
	b := NewRewardEvent("alice", "c1", "t")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestFuncSinkAndMulti(t *testing.T) {
	var mu sync.Mutex
	var got []string
	record := func(tag string) Sink {
		return FuncSink(func(e Event) {
			mu.Lock()
			got = append(got, tag+":"+e.LearnerID)
			mu.Unlock()
		})
	}

	m := MultiSink{record("a"), nil, record("b")}
	m.Notify(NewRewardEvent("alice", "c1", "t"))

	assert.Equal(t, []string{"a:alice", "b:alice"}, got)
}

func TestOrDiscard(t *testing.T) {
	assert.NotPanics(t, func() { OrDiscard(nil).Notify(Event{}) })

	c := NewChannelSink(1)
	assert.Same(t, c, OrDiscard(c))
}

func TestChannelSink_DropsWhenFull(t *testing.T) {
	s := NewChannelSink(2)

	for i := 0; i < 5; i++ {
		s.Notify(NewRewardEvent("alice", "c1", "t"))
	}

	assert.Len(t, s.Events(), 2)
	assert.Equal(t, int64(3), s.Dropped())
}

func TestChannelSink_MinimumBuffer(t *testing.T) {
	s := NewChannelSink(0)
	s.Notify(Event{Kind: KindBadge})

	e := <-s.Events()
	assert.Equal(t, KindBadge, e.Kind)
}
