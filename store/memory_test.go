package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon16/models"
)

func seedUser(t *testing.T, s *MemUsers, u *models.User) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), u))
}

func freeUser(id int64, swipes int) *models.User {
	return &models.User{
		UserID:        id,
		Name:          fmt.Sprintf("u%d", id),
		SwipeCount:    swipes,
		LikedUsers:    []int64{},
		DislikedUsers: []int64{},
		JoinDate:      time.Now(),
	}
}

func TestRecordLikeDecrementsAllowance(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 2))

	now := time.Now()
	require.NoError(t, s.RecordLike(ctx, 1, 2, now))

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, u.SwipeCount)
	assert.Equal(t, []int64{2}, u.LikedUsers)
	require.NotNil(t, u.LastSwipe)
	assert.True(t, u.LastSwipe.Equal(now))
}

func TestRecordLikeExhaustsThenRejects(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 1))

	require.NoError(t, s.RecordLike(ctx, 1, 2, time.Now()))
	err := s.RecordLike(ctx, 1, 3, time.Now())
	assert.ErrorIs(t, err, ErrOutOfSwipes)

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, u.LikedUsers)
	assert.Equal(t, 0, u.SwipeCount)
}

func TestRecordLikeRejectsRepeatDecision(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 10))

	require.NoError(t, s.RecordLike(ctx, 1, 2, time.Now()))
	assert.ErrorIs(t, s.RecordLike(ctx, 1, 2, time.Now()), ErrAlreadySwiped)

	require.NoError(t, s.RecordDislike(ctx, 1, 3, time.Now()))
	assert.ErrorIs(t, s.RecordLike(ctx, 1, 3, time.Now()), ErrAlreadySwiped)

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, u.LikedUsers)
	assert.Equal(t, []int64{3}, u.DislikedUsers)
	assert.Equal(t, 9, u.SwipeCount)
}

func TestRecordLikeSubscribedSkipsAllowance(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	u := freeUser(1, 0)
	u.IsSubscribed = true
	seedUser(t, s, u)

	require.NoError(t, s.RecordLike(ctx, 1, 2, time.Now()))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SwipeCount)
	assert.Equal(t, []int64{2}, got.LikedUsers)
}

func TestRecordSwipeRejectsSelf(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 5))

	assert.ErrorIs(t, s.RecordLike(ctx, 1, 1, time.Now()), ErrSelfSwipe)
	assert.ErrorIs(t, s.RecordDislike(ctx, 1, 1, time.Now()), ErrSelfSwipe)

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, u.LikedUsers)
	assert.Empty(t, u.DislikedUsers)
	assert.Equal(t, 5, u.SwipeCount)
	assert.Nil(t, u.LastSwipe)
}

func TestRecordLikeMissingUser(t *testing.T) {
	s := NewMemUsers()
	assert.ErrorIs(t, s.RecordLike(context.Background(), 1, 2, time.Now()), ErrNotFound)
}

func TestRecordDislikeIdempotentNoAllowance(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 5))

	require.NoError(t, s.RecordDislike(ctx, 1, 2, time.Now()))
	require.NoError(t, s.RecordDislike(ctx, 1, 2, time.Now()))

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, u.DislikedUsers)
	assert.Equal(t, 5, u.SwipeCount)
}

func TestRecordDislikeRejectsPriorLike(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 5))

	require.NoError(t, s.RecordLike(ctx, 1, 2, time.Now()))
	assert.ErrorIs(t, s.RecordDislike(ctx, 1, 2, time.Now()), ErrAlreadySwiped)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	seedUser(t, s, freeUser(1, 5))

	u, err := s.Get(ctx, 1)
	require.NoError(t, err)
	u.Name = "mutated"

	again, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "u1", again.Name)
}

func TestExpiredSubscribers(t *testing.T) {
	ctx := context.Background()
	s := NewMemUsers()
	now := time.Now()

	past := now.Add(-time.Hour)
	expired := freeUser(1, 0)
	expired.IsSubscribed = true
	expired.SubscriptionExpiry = &past
	seedUser(t, s, expired)

	future := now.Add(time.Hour)
	current := freeUser(2, 0)
	current.IsSubscribed = true
	current.SubscriptionExpiry = &future
	seedUser(t, s, current)

	noExpiry := freeUser(3, 0)
	noExpiry.IsSubscribed = true
	seedUser(t, s, noExpiry)

	got, err := s.ExpiredSubscribers(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].UserID)
}

func TestLogsRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	logs := NewMemLogs()

	for i := 0; i < 5; i++ {
		require.NoError(t, logs.Append(ctx, models.LogEntry{
			UserID:    "Admin",
			Action:    fmt.Sprintf("action-%d", i),
			Timestamp: time.Now(),
		}))
	}

	recent, err := logs.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "action-4", recent[0].Action)
	assert.Equal(t, "action-2", recent[2].Action)
}

func TestSessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemSessions()

	sess := &models.Session{UserID: 1, Stage: models.StageName}
	require.NoError(t, sessions.Put(ctx, sess))

	got, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StageName, got.Stage)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, sessions.Delete(ctx, 1))
	_, err = sessions.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
