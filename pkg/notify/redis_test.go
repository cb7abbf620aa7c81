package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("DEFECTHUNT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DEFECTHUNT_TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNewRedisPublisher_DefaultChannel(t *testing.T) {
	p := NewRedisPublisher(nil, "")
	assert.Equal(t, DefaultChannel, p.Channel())
}

func TestRedisPublisher_SubscribeRejectsNilSink(t *testing.T) {
	p := NewRedisPublisher(nil, "x")
	assert.Error(t, p.Subscribe(context.Background(), nil))
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	rdb := redisClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewRedisPublisher(rdb, "defecthunt.test."+uuid.NewString())
	sink := NewChannelSink(4)
	require.NoError(t, p.Subscribe(ctx, sink))

	sent := NewBadgeEvent("alice", "explorer", "Solve three", "")
	p.Notify(sent)

	select {
	case got := <-sink.Events():
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "explorer", got.Payload.BadgeName)
	case <-time.After(3 * time.Second):
		t.Fatal("event not received")
	}
}
