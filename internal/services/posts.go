package services

import (
	"context"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

// TimelineSize is the number of posts on the home timeline
const TimelineSize = 20

// PostService publishes posts and renders them with authors and counts
type PostService struct {
	posts       repositories.PostRepository
	users       repositories.UserRepository
	engagements repositories.EngagementRepository
	aggregator  *EngagementAggregator
	timeout     time.Duration
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, engagements repositories.EngagementRepository, aggregator *EngagementAggregator, timeout time.Duration) *PostService {
	return &PostService{
		posts:       posts,
		users:       users,
		engagements: engagements,
		aggregator:  aggregator,
		timeout:     timeout,
	}
}

// CreatePost publishes a post for authorID
func (s *PostService) CreatePost(ctx context.Context, authorID uint, text string) (*models.PostView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{UserID: authorID, Text: text}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	counts := models.PostCounts{}
	counts.FillDisplay()
	return &models.PostView{
		ID:        post.ID,
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		Author:    author.ToAuthor(),
		Counts:    counts,
	}, nil
}

// Timeline returns the most recent posts from everyone
func (s *PostService) Timeline(ctx context.Context, viewerID *uint) ([]models.PostView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.posts.GetRecentPosts(ctx, TimelineSize)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, posts, viewerID)
}

// UserPosts returns a user's profile and every post they wrote, newest first
func (s *PostService) UserPosts(ctx context.Context, username string, viewerID *uint) (*models.User, []models.PostView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.posts.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	views, err := s.render(ctx, posts, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return user, views, nil
}

// PostDetail returns one post with its counts and replies, oldest reply first
func (s *PostService) PostDetail(ctx context.Context, postID uint, viewerID *uint) (*models.PostView, []models.ReplyView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	views, err := s.render(ctx, []models.Post{*post}, viewerID)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.engagements.GetReplies(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return &views[0], replies, nil
}

func (s *PostService) render(ctx context.Context, posts []models.Post, viewerID *uint) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}

	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	counts, err := s.aggregator.GetCountsForPosts(ctx, postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		author := authors[p.UserID]
		views = append(views, models.PostView{
			ID:        p.ID,
			Text:      p.Text,
			CreatedAt: p.CreatedAt,
			Author:    author.ToAuthor(),
			Counts:    counts[p.ID],
		})
	}
	return views, nil
}
