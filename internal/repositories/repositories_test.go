package repositories

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/pkg/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "repo.db"),
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 2,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(db.CloseDB)
	return db.Gorm
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError("op", nil))
	assert.ErrorIs(t, translateError("op", gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError("op", gorm.ErrDuplicatedKey), ErrConflict)
	assert.ErrorIs(t, translateError("op", context.DeadlineExceeded), ErrUnavailable)
	assert.ErrorIs(t, translateError("op", sqlite3.Error{Code: sqlite3.ErrBusy}), ErrUnavailable)
	assert.ErrorIs(t, translateError("op",
		sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), ErrConflict)

	other := errors.New("disk on fire")
	err := translateError("op", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "op:")
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "Alice"}
	require.NoError(t, repo.CreateUser(ctx, alice))
	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{Username: "alice"}), ErrConflict)

	found, err := repo.GetUserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, "Alice", found.Name())

	_, err = repo.GetUserByID(ctx, alice.ID+10)
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := repo.GetUsersByIDs(ctx, []uint{alice.ID, alice.ID + 10})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).
		UpdateColumn("last_seen_notification_id", 7).Error)
	found.Bio = "updated"
	found.LastSeenNotificationID = 0
	require.NoError(t, repo.UpdateUser(ctx, found))

	reloaded, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", reloaded.Bio)
	assert.Equal(t, uint(7), reloaded.LastSeenNotificationID)
}

func TestPostRepository_GetOwnerID(t *testing.T) {
	db := openTestDB(t)
	users := NewGormUserRepository(db)
	posts := NewGormPostRepository(db)
	ctx := context.Background()

	owner := &models.User{Username: "owner"}
	require.NoError(t, users.CreateUser(ctx, owner))
	post := &models.Post{UserID: owner.ID, Text: "hi"}
	require.NoError(t, posts.CreatePost(ctx, post))
	assert.False(t, post.CreatedAt.IsZero())

	ownerID, err := posts.GetOwnerID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, ownerID)

	_, err = posts.GetOwnerID(ctx, post.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngagementRepository(t *testing.T) {
	db := openTestDB(t)
	users := NewGormUserRepository(db)
	posts := NewGormPostRepository(db)
	engagements := NewGormEngagementRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	owner := &models.User{Username: "owner"}
	require.NoError(t, users.CreateUser(ctx, owner))
	post := &models.Post{UserID: owner.ID, Text: "hi"}
	require.NoError(t, posts.CreatePost(ctx, post))

	var fans []*models.User
	for i := 0; i < 7; i++ {
		u := &models.User{Username: fmt.Sprintf("fan%d", i)}
		require.NoError(t, users.CreateUser(ctx, u))
		fans = append(fans, u)
		require.NoError(t, engagements.CreateEngagement(ctx, &models.Engagement{
			UserID: u.ID, PostID: post.ID, Kind: models.KindLike, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	err := engagements.CreateEngagement(ctx, &models.Engagement{UserID: fans[0].ID, PostID: post.ID, Kind: models.KindLike})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, engagements.CreateEngagement(ctx, &models.Engagement{
		UserID: fans[1].ID, PostID: post.ID, Kind: models.KindReply, Content: "one", CreatedAt: base,
	}))
	require.NoError(t, engagements.CreateEngagement(ctx, &models.Engagement{
		UserID: fans[2].ID, PostID: post.ID, Kind: models.KindReply, Content: "two", CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, engagements.CreateEngagement(ctx, &models.Engagement{
		UserID: fans[1].ID, PostID: post.ID, Kind: models.KindReshare, CreatedAt: base,
	}))

	counts, err := engagements.CountByPostIDs(ctx, []uint{post.ID, post.ID + 1})
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts[post.ID].LikeCount)
	assert.Equal(t, int64(2), counts[post.ID].ReplyCount)
	assert.Equal(t, int64(1), counts[post.ID].ReshareCount)
	_, ok := counts[post.ID+1]
	assert.False(t, ok)

	kinds, err := engagements.ViewerKinds(ctx, fans[1].ID, []uint{post.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.EngagementKind{models.KindLike, models.KindReshare}, kinds[post.ID])

	likers, err := engagements.GetRecentLikers(ctx, post.ID, 5)
	require.NoError(t, err)
	require.Len(t, likers, 5)
	assert.Equal(t, "fan6", likers[0].Username)
	assert.Equal(t, "fan2", likers[4].Username)

	latest, err := engagements.GetLatestReply(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "two", latest.Content)
	assert.Equal(t, "fan2", latest.Author.Username)

	none, err := engagements.GetLatestReply(ctx, post.ID+1)
	require.NoError(t, err)
	assert.Nil(t, none)

	replies, err := engagements.GetReplies(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "one", replies[0].Content)

	assert.ErrorIs(t, engagements.DeleteEngagement(ctx, 99999), ErrNotFound)
}

func TestNotificationRepository(t *testing.T) {
	db := openTestDB(t)
	users := NewGormUserRepository(db)
	posts := NewGormPostRepository(db)
	notifications := NewGormNotificationRepository(db)
	ctx := context.Background()

	owner := &models.User{Username: "owner", DisplayName: "The Owner"}
	require.NoError(t, users.CreateUser(ctx, owner))
	post := &models.Post{UserID: owner.ID, Text: "hi"}
	require.NoError(t, posts.CreatePost(ctx, post))

	maxID, err := notifications.GetMaxID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, maxID)

	for i := 0; i < 3; i++ {
		require.NoError(t, notifications.CreateNotification(ctx, &models.Notification{
			Kind: models.KindLike, PostID: post.ID, RecipientID: owner.ID, ActorID: 99,
		}))
	}
	require.NoError(t, notifications.CreateNotification(ctx, &models.Notification{
		Kind: models.KindReshare, PostID: post.ID + 5, RecipientID: owner.ID, ActorID: 99,
	}))

	entries, err := notifications.GetRecentEntries(ctx, owner.ID, 100)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, "The Owner", entries[0].PostAuthor.DisplayName)
	assert.Equal(t, "hi", entries[0].PostText)

	unread, err := notifications.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), unread)

	maxID, err = notifications.GetMaxID(ctx, owner.ID)
	require.NoError(t, err)
	require.NoError(t, notifications.AdvanceWatermark(ctx, owner.ID, maxID))
	require.NoError(t, notifications.AdvanceWatermark(ctx, owner.ID, 1))

	reloaded, err := users.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, maxID, reloaded.LastSeenNotificationID)

	unread, err = notifications.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = notifications.GetUnreadCount(ctx, 4242)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
