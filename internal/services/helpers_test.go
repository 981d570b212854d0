package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/microblog/backend/internal/events"
	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/pkg/config"
)

type testEnv struct {
	db            *gorm.DB
	users         repositories.UserRepository
	posts         repositories.PostRepository
	engagements   repositories.EngagementRepository
	notifications repositories.NotificationRepository

	aggregator *EngagementAggregator
	notifier   *Notifier
	feed       *FeedBuilder
	watermark  *WatermarkTracker
	service    *EngagementService
	postSvc    *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := config.InitDB(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "microblog.db"),
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	env := &testEnv{
		db:            db.Gorm,
		users:         repositories.NewGormUserRepository(db.Gorm),
		posts:         repositories.NewGormPostRepository(db.Gorm),
		engagements:   repositories.NewGormEngagementRepository(db.Gorm),
		notifications: repositories.NewGormNotificationRepository(db.Gorm),
	}

	timeout := 5 * time.Second
	env.aggregator = NewEngagementAggregator(env.engagements, timeout)
	env.notifier = NewNotifier(env.posts, env.notifications, NotifierConfig{QueryTimeout: timeout})
	env.feed = NewFeedBuilder(env.notifications, env.engagements, timeout)
	env.watermark = NewWatermarkTracker(env.notifications, timeout)
	env.postSvc = NewPostService(env.posts, env.users, env.engagements, env.aggregator, timeout)

	bus := events.NewBus(logging.NewWatermillAdapter())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.SubscribeEngagementCreated(ctx, env.notifier.HandleEngagementCreated))
	env.service = NewEngagementService(env.posts, env.engagements, bus, timeout)

	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		db.CloseDB()
	})
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: "Display " + username}
	require.NoError(t, e.users.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createPost(t *testing.T, owner *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: owner.ID, Text: text}
	require.NoError(t, e.posts.CreatePost(context.Background(), post))
	return post
}

// engageAt stores an engagement and its notification with a fixed timestamp
func (e *testEnv) engageAt(t *testing.T, actor *models.User, post *models.Post, kind models.EngagementKind, content string, at time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.engagements.CreateEngagement(ctx, &models.Engagement{
		UserID:    actor.ID,
		PostID:    post.ID,
		Kind:      kind,
		Content:   content,
		CreatedAt: at,
	}))
	require.NoError(t, e.notifications.CreateNotification(ctx, &models.Notification{
		Kind:        kind,
		PostID:      post.ID,
		RecipientID: post.UserID,
		ActorID:     actor.ID,
		CreatedAt:   at,
	}))
}

func (e *testEnv) countNotifications(t *testing.T, recipientID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&n).Error)
	return n
}

func (e *testEnv) createUsers(t *testing.T, prefix string, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, e.createUser(t, fmt.Sprintf("%s%d", prefix, i)))
	}
	return users
}

func uintPtr(v uint) *uint { return &v }
