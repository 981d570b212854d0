package services

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/anonto42/microblog/backend/internal/events"
	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/metrics"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

// NotifierConfig configures the notification insert circuit breaker
type NotifierConfig struct {
	QueryTimeout     time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Notifier records a notification for the post owner when someone else
// engages with the post. It never reports failure to its caller.
type Notifier struct {
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	breaker       *gobreaker.CircuitBreaker[struct{}]
	timeout       time.Duration
}

// NewNotifier creates a new Notifier
func NewNotifier(posts repositories.PostRepository, notifications repositories.NotificationRepository, cfg NotifierConfig) *Notifier {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "notification-insert",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repositories.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.NotificationBreakerState.Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("notification circuit breaker state changed")
		},
	}

	return &Notifier{
		posts:         posts,
		notifications: notifications,
		breaker:       gobreaker.NewCircuitBreaker[struct{}](settings),
		timeout:       cfg.QueryTimeout,
	}
}

// Notify records a notification for the owner of postID. A missing post and
// self-engagement are silently ignored; storage failures are logged and dropped.
func (n *Notifier) Notify(ctx context.Context, actorID uint, kind models.EngagementKind, postID uint) {
	if err := n.notify(ctx, actorID, kind, postID); err != nil {
		logging.Warn().Err(err).
			Uint("actor_id", actorID).
			Uint("post_id", postID).
			Str("kind", string(kind)).
			Msg("notification dropped")
	}
}

// HandleEngagementCreated is the post-commit subscriber for new engagements
func (n *Notifier) HandleEngagementCreated(ctx context.Context, event events.EngagementCreated) error {
	return n.notify(ctx, event.ActorID, event.Kind, event.PostID)
}

func (n *Notifier) notify(ctx context.Context, actorID uint, kind models.EngagementKind, postID uint) error {
	ctx, cancel := withTimeout(ctx, n.timeout)
	defer cancel()

	outcome := "created"
	_, err := n.breaker.Execute(func() (struct{}, error) {
		ownerID, err := n.posts.GetOwnerID(ctx, postID)
		if err != nil {
			return struct{}{}, err
		}
		if ownerID == actorID {
			outcome = "self"
			return struct{}{}, nil
		}
		return struct{}{}, n.notifications.CreateNotification(ctx, &models.Notification{
			Kind:        kind,
			PostID:      postID,
			RecipientID: ownerID,
			ActorID:     actorID,
		})
	})

	switch {
	case err == nil:
		metrics.RecordNotification(string(kind), outcome)
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		metrics.RecordNotification(string(kind), "missing_post")
		return nil
	default:
		metrics.RecordNotification(string(kind), "dropped")
		return err
	}
}
