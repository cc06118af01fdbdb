package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/view"
)

const DefaultChannel = "oware:render"

// Message is one published frame.
type Message struct {
	Seq          int64             `json:"seq"`
	At           time.Time         `json:"at"`
	Instructions view.Instructions `json:"instructions"`
}

// Publisher mirrors every rendered frame onto a Redis pub/sub channel.
// Nothing is stored; late subscribers only see frames from then on.
type Publisher struct {
	rdb     *redis.Client
	channel string
	seq     atomic.Int64
	now     func() time.Time
}

// Connect dials redisURL and checks it with PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("mirror: redis url required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("mirror: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel, now: time.Now}
}

func (p *Publisher) Channel() string { return p.channel }

func (p *Publisher) Present(ctx context.Context, in view.Instructions) error {
	msg := Message{Seq: p.seq.Add(1), At: p.now().UTC(), Instructions: in}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("mirror publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}

// Watch delivers mirrored frames to fn until ctx ends. Undecodable payloads are skipped.
func Watch(ctx context.Context, rdb *redis.Client, channel string, fn func(Message)) error {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("mirror subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				obslog.L().Warn("mirror_decode_error", zap.String("channel", channel), zap.Error(err))
				continue
			}
			fn(msg)
		}
	}
}
