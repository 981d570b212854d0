// Package events carries post-commit engagement events between the write path
// and the notification generator over an in-process watermill GoChannel.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/models"
)

// TopicEngagementCreated is published after an engagement row commits
const TopicEngagementCreated = "engagement.created"

// EngagementCreated describes a committed engagement
type EngagementCreated struct {
	EngagementID uint                  `json:"engagement_id"`
	ActorID      uint                  `json:"actor_id"`
	PostID       uint                  `json:"post_id"`
	Kind         models.EngagementKind `json:"kind"`
}

// EngagementHandler consumes EngagementCreated events
type EngagementHandler func(ctx context.Context, event EngagementCreated) error

// Bus is a synchronous in-process publisher/subscriber. Publish blocks until
// every subscriber has acknowledged, so a request that publishes observes the
// handlers' side effects before it returns.
type Bus struct {
	pubSub *gochannel.GoChannel
	wg     sync.WaitGroup
}

// NewBus creates a Bus
func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, logger),
	}
}

// PublishEngagementCreated publishes a committed engagement
func (b *Bus) PublishEngagementCreated(ctx context.Context, event EngagementCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", TopicEngagementCreated, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := b.pubSub.Publish(TopicEngagementCreated, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", TopicEngagementCreated, err)
	}
	return nil
}

// SubscribeEngagementCreated starts delivering events to handler until ctx is
// cancelled or the bus is closed. Handler errors are logged and the message is
// acknowledged anyway; consumers are best-effort.
func (b *Bus) SubscribeEngagementCreated(ctx context.Context, handler EngagementHandler) error {
	messages, err := b.pubSub.Subscribe(ctx, TopicEngagementCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicEngagementCreated, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			var event EngagementCreated
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable engagement event")
				msg.Ack()
				continue
			}
			logging.Debug().
				Str("message_uuid", msg.UUID).
				Uint("engagement_id", event.EngagementID).
				Msg("delivering engagement event")
			if err := handler(msg.Context(), event); err != nil {
				logging.Warn().Err(err).
					Uint("engagement_id", event.EngagementID).
					Msg("engagement event handler failed")
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close stops the bus and waits for subscriber goroutines to drain
func (b *Bus) Close() error {
	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}
