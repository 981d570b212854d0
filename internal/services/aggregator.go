package services

import (
	"context"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

// EngagementAggregator computes per-post counts joined with viewer state.
// Nothing is cached; every call reads storage.
type EngagementAggregator struct {
	engagements repositories.EngagementRepository
	timeout     time.Duration
}

// NewEngagementAggregator creates a new EngagementAggregator
func NewEngagementAggregator(engagements repositories.EngagementRepository, timeout time.Duration) *EngagementAggregator {
	return &EngagementAggregator{engagements: engagements, timeout: timeout}
}

// GetCounts returns the counts for a single post. An unknown post yields zero counts.
func (a *EngagementAggregator) GetCounts(ctx context.Context, postID uint, viewerID *uint) (models.PostCounts, error) {
	counts, err := a.GetCountsForPosts(ctx, []uint{postID}, viewerID)
	if err != nil {
		return models.PostCounts{}, err
	}
	return counts[postID], nil
}

// GetCountsForPosts returns counts for every requested post. A nil or zero
// viewerID is anonymous and leaves the viewer flags false.
func (a *EngagementAggregator) GetCountsForPosts(ctx context.Context, postIDs []uint, viewerID *uint) (map[uint]models.PostCounts, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	counts, err := a.engagements.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var viewerKinds map[uint][]models.EngagementKind
	if viewerID != nil && *viewerID != 0 {
		viewerKinds, err = a.engagements.ViewerKinds(ctx, *viewerID, postIDs)
		if err != nil {
			return nil, err
		}
	}

	result := make(map[uint]models.PostCounts, len(postIDs))
	for _, id := range postIDs {
		c := counts[id]
		for _, kind := range viewerKinds[id] {
			switch kind {
			case models.KindLike:
				c.ViewerLiked = true
			case models.KindReshare:
				c.ViewerReshared = true
			}
		}
		c.FillDisplay()
		result[id] = c
	}
	return result, nil
}
