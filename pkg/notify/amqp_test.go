package notify

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAMQPPublisher_BadURL(t *testing.T) {
	_, err := NewAMQPPublisher("amqp://127.0.0.1:1/", "q")
	assert.Error(t, err)
}

func TestAMQPPublisher_RoundTrip(t *testing.T) {
	url := os.Getenv("DEFECTHUNT_TEST_AMQP_URL")
	if url == "" {
		t.Skip("DEFECTHUNT_TEST_AMQP_URL not set")
	}

	queue := "defecthunt-test-" + uuid.NewString()
	p, err := NewAMQPPublisher(url, queue)
	require.NoError(t, err)
	defer p.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer func() {
		_, _ = ch.QueueDelete(queue, false, false, false)
		_ = ch.Close()
	}()
	deliveries, err := ch.Consume(queue, "", true, false, false, false, nil)
	require.NoError(t, err)

	sent := NewBadgeEvent("alice", "explorer", "Three solved", "")
	p.Notify(sent)

	select {
	case d := <-deliveries:
		assert.Equal(t, "application/json", d.ContentType)
		assert.Equal(t, sent.ID, d.MessageId)
		var got Event
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "explorer", got.Payload.BadgeName)
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Error(t, p.Publish(t.Context(), sent))
}
