package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital.vasic.defecthunt/pkg/logging"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is given.
const DefaultChannel = "defecthunt.events"

// PublisherOption configures a RedisPublisher.
type PublisherOption func(*RedisPublisher)

// WithPublisherLogger logs publish failures on l.
func WithPublisherLogger(l logging.Logger) PublisherOption {
	return func(p *RedisPublisher) {
		p.log = logging.OrNull(l)
	}
}

// WithPublishTimeout bounds each PUBLISH call.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *RedisPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// RedisPublisher is a Sink that publishes events as JSON on a
// Redis pub/sub channel, so presenters in other processes can
// pick them up.
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
	timeout time.Duration
	log     logging.Logger
}

// NewRedisPublisher creates a publisher on channel. An empty
// channel selects DefaultChannel.
func NewRedisPublisher(
	rdb *goredis.Client,
	channel string,
	opts ...PublisherOption,
) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	p := &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		timeout: 2 * time.Second,
		log:     logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the pub/sub channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

// Notify publishes event. Failures are logged, never returned.
func (p *RedisPublisher) Notify(event Event) {
	if err := p.Publish(context.Background(), event); err != nil {
		p.log.Error("publish event",
			logging.StringField("event_id", event.ID),
			logging.StringField("channel", p.channel),
			logging.ErrorField(err),
		)
	}
}

// Publish publishes event and reports the outcome.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

// Subscribe forwards events published on the channel to sink
// until ctx is done. It returns once the subscription is
// confirmed; delivery runs in a background goroutine.
func (p *RedisPublisher) Subscribe(ctx context.Context, sink Sink) error {
	if sink == nil {
		return fmt.Errorf("sink required")
	}

	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					p.log.Warn("bad event payload", logging.ErrorField(err))
					continue
				}
				sink.Notify(event)
			}
		}
	}()
	return nil
}
