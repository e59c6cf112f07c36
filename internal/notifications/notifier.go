// Package notifications publishes engagement events through Redis and fans
// them out to websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"knowhere/internal/middleware"
	"knowhere/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// EngagementChannel carries every engagement event.
	EngagementChannel = "knowhere:engagement"

	userChannelPrefix = "notifications:user:"
)

// Event types.
const (
	EventArticlePublished = "article_published"
	EventClap             = "clap"
	EventComment          = "comment"
)

// Event is the wire form of an engagement event.
type Event struct {
	Type      string         `json:"type"`
	ArticleID string         `json:"article_id"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	TS        time.Time      `json:"ts"`
}

// Notifier provides helpers to publish engagement events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEngagement sends ev to the broadcast channel and, when authorID is
// set, to the author's personal channel. A nil client makes it a no-op.
func (n *Notifier) PublishEngagement(ctx context.Context, authorID string, ev Event) (err error) {
	if n == nil || n.rdb == nil {
		return nil
	}

	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "publish")
	defer func() { observability.EndSpan(span, err) }()

	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.rdb.Publish(ctx, EngagementChannel, body).Err(); err != nil {
		return err
	}
	if authorID == "" {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(authorID), body).Err()
}

// StartSubscriber subscribes to the engagement channel and every user
// channel and calls onMessage for each incoming message until ctx is done.
func (n *Notifier) StartSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, EngagementChannel, userChannelPrefix+"*")
	// Wait for the subscription to be confirmed so nothing published right
	// after StartSubscriber returns is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe engagement channels: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in engagement subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// userFromChannel returns the user id of a personal channel.
func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	return id, ok && id != ""
}
