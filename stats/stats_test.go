package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon16/models"
	"lemon16/store"
)

func newAggregatorAt(t *testing.T, now time.Time, users ...*models.User) *Aggregator {
	t.Helper()
	mem := store.NewMemUsers()
	for _, u := range users {
		require.NoError(t, mem.Insert(context.Background(), u))
	}
	agg := New(mem)
	agg.now = func() time.Time { return now }
	return agg
}

func statsUser(id int64, premium bool, lastSwipe *time.Time, liked ...int64) *models.User {
	return &models.User{
		UserID:       id,
		Name:         "u",
		IsSubscribed: premium,
		LastSwipe:    lastSwipe,
		LikedUsers:   liked,
		JoinDate:     time.Now(),
	}
}

func ts(t time.Time) *time.Time { return &t }

func TestSnapshotCounts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	agg := newAggregatorAt(t, now,
		statsUser(1, true, nil),
		statsUser(2, false, nil),
		statsUser(3, false, nil),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalUsers)
	assert.Equal(t, 1, snap.PremiumUsers)
	assert.Equal(t, 2, snap.FreeUsers)
	assert.Equal(t, 0, snap.MatchesToday)
	assert.Equal(t, 0, snap.InactiveUsers)
	assert.Len(t, snap.AllUsers, 3)
}

func TestMatchesTodayCountsPairOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	today := ts(now.Add(-time.Hour))

	agg := newAggregatorAt(t, now,
		statsUser(1, false, today, 2),
		statsUser(2, false, today, 1),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.MatchesToday)
}

func TestMatchesTodayOneSideSwipedYesterday(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Both sides like each other but only one swiped today: a single directed
	// edge counts and the floor drops it to zero.
	agg := newAggregatorAt(t, now,
		statsUser(1, false, ts(now.Add(-time.Hour)), 2),
		statsUser(2, false, ts(now.Add(-36*time.Hour)), 1),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.MatchesToday)
}

func TestMatchesTodayIgnoresOneSidedLikes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	today := ts(now.Add(-time.Hour))

	agg := newAggregatorAt(t, now,
		statsUser(1, false, today, 2),
		statsUser(2, false, today),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.MatchesToday)
}

func TestMatchesTodayMultiplePairs(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	today := ts(now.Add(-time.Hour))

	agg := newAggregatorAt(t, now,
		statsUser(1, false, today, 2),
		statsUser(2, false, today, 1),
		statsUser(3, false, today, 4),
		statsUser(4, false, today, 3),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.MatchesToday)
}

func TestInactiveBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	agg := newAggregatorAt(t, now,
		statsUser(1, false, ts(now.Add(-29*24*time.Hour))),
		statsUser(2, false, ts(now.Add(-31*24*time.Hour))),
		statsUser(3, false, nil),
	)

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.InactiveUsers)
}

func TestSnapshotEmptyStore(t *testing.T) {
	agg := newAggregatorAt(t, time.Now())

	snap, err := agg.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalUsers)
	assert.Equal(t, 0, snap.FreeUsers)
	assert.Empty(t, snap.AllUsers)
}
