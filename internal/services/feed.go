package services

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/metrics"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

const (
	feedFetchLimit = 100
	feedMaxEntries = 50
	maxLikersShown = 5
)

// FeedBuilder assembles a user's aggregated notification feed
type FeedBuilder struct {
	notifications repositories.NotificationRepository
	engagements   repositories.EngagementRepository
	timeout       time.Duration
}

// NewFeedBuilder creates a new FeedBuilder
func NewFeedBuilder(notifications repositories.NotificationRepository, engagements repositories.EngagementRepository, timeout time.Duration) *FeedBuilder {
	return &FeedBuilder{notifications: notifications, engagements: engagements, timeout: timeout}
}

// GetFeed returns at most 50 entries, newest first. Likes on the same post
// collapse into one aggregated entry; replies and reshares stay individual.
// On any storage failure the feed is empty, never partial.
func (f *FeedBuilder) GetFeed(ctx context.Context, userID uint) []models.NotificationView {
	start := time.Now()
	defer func() {
		metrics.FeedBuildDuration.Observe(time.Since(start).Seconds())
	}()

	views, err := f.build(ctx, userID)
	if err != nil {
		metrics.FeedBuildFailures.Inc()
		logging.Error().Err(err).Uint("user_id", userID).Msg("failed to build notification feed")
		return []models.NotificationView{}
	}
	return views
}

func (f *FeedBuilder) build(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	ctx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	entries, err := f.notifications.GetRecentEntries(ctx, userID, feedFetchLimit)
	if err != nil {
		return nil, err
	}

	// Entries arrive newest first, so the first like seen for a post gives
	// the aggregated entry its timestamp.
	likeGroups := make(map[uint]*models.NotificationView)
	var likeOrder []uint
	var singles []models.NotificationView
	latestReplies := make(map[uint]*models.ReplyView)

	for _, e := range entries {
		switch e.Kind {
		case models.KindLike:
			if _, seen := likeGroups[e.PostID]; seen {
				continue
			}
			likers, err := f.engagements.GetRecentLikers(ctx, e.PostID, maxLikersShown)
			if err != nil {
				return nil, err
			}
			likeGroups[e.PostID] = &models.NotificationView{
				Kind:       models.ViewKindAggregatedLikes,
				PostID:     e.PostID,
				PostText:   e.PostText,
				PostAuthor: e.PostAuthor,
				CreatedAt:  e.CreatedAt,
				Likers:     likers,
				LikeCount:  len(likers),
			}
			likeOrder = append(likeOrder, e.PostID)

		case models.KindReply:
			reply, cached := latestReplies[e.PostID]
			if !cached {
				reply, err = f.engagements.GetLatestReply(ctx, e.PostID)
				if err != nil {
					return nil, err
				}
				latestReplies[e.PostID] = reply
			}
			view := singleView(e)
			view.Reply = reply
			singles = append(singles, view)

		default:
			singles = append(singles, singleView(e))
		}
	}

	feed := make([]models.NotificationView, 0, len(likeOrder)+len(singles))
	for _, postID := range likeOrder {
		if group := likeGroups[postID]; group.LikeCount > 0 {
			feed = append(feed, *group)
		}
	}
	feed = append(feed, singles...)

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	if len(feed) > feedMaxEntries {
		feed = feed[:feedMaxEntries]
	}
	return feed, nil
}

func singleView(e models.NotificationEntry) models.NotificationView {
	return models.NotificationView{
		Kind:       string(e.Kind),
		ID:         e.ID,
		PostID:     e.PostID,
		PostText:   e.PostText,
		PostAuthor: e.PostAuthor,
		CreatedAt:  e.CreatedAt,
	}
}
