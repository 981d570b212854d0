package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/microblog/backend/internal/events"
	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/metrics"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

// EngagementPublisher receives committed engagements
type EngagementPublisher interface {
	PublishEngagementCreated(ctx context.Context, event events.EngagementCreated) error
}

// EngagementService creates and deletes likes, replies and reshares
type EngagementService struct {
	posts       repositories.PostRepository
	engagements repositories.EngagementRepository
	publisher   EngagementPublisher
	timeout     time.Duration
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(posts repositories.PostRepository, engagements repositories.EngagementRepository, publisher EngagementPublisher, timeout time.Duration) *EngagementService {
	return &EngagementService{
		posts:       posts,
		engagements: engagements,
		publisher:   publisher,
		timeout:     timeout,
	}
}

// Create stores an engagement and then publishes it for the notification
// generator. A publish failure is logged; the engagement stays committed.
func (s *EngagementService) Create(ctx context.Context, actorID, postID uint, kind models.EngagementKind, content string) (*models.Engagement, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if kind != models.KindReply {
		content = ""
	}

	opCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.posts.GetPostByID(opCtx, postID); err != nil {
		metrics.RecordEngagement(string(kind), "error")
		return nil, err
	}

	engagement := &models.Engagement{
		UserID:  actorID,
		PostID:  postID,
		Kind:    kind,
		Content: content,
	}
	if err := s.engagements.CreateEngagement(opCtx, engagement); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			metrics.RecordEngagement(string(kind), "conflict")
		} else {
			metrics.RecordEngagement(string(kind), "error")
		}
		return nil, err
	}
	metrics.RecordEngagement(string(kind), "created")

	err := s.publisher.PublishEngagementCreated(ctx, events.EngagementCreated{
		EngagementID: engagement.ID,
		ActorID:      actorID,
		PostID:       postID,
		Kind:         kind,
	})
	if err != nil {
		logging.Error().Err(err).Uint("engagement_id", engagement.ID).Msg("failed to publish engagement")
	}

	return engagement, nil
}

// Delete removes an engagement owned by callerID. Notifications it produced are kept.
func (s *EngagementService) Delete(ctx context.Context, callerID, engagementID uint) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	engagement, err := s.engagements.GetEngagementByID(ctx, engagementID)
	if err != nil {
		return err
	}
	if engagement.UserID != callerID {
		return ErrUnauthorized
	}
	return s.engagements.DeleteEngagement(ctx, engagementID)
}

// ListForPost returns the raw engagements on a post, oldest first
func (s *EngagementService) ListForPost(ctx context.Context, postID uint) ([]models.EngagementView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	views, err := s.engagements.GetEngagementsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.EngagementView{}
	}
	return views, nil
}
