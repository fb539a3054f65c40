package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon16/models"
	"lemon16/store"
)

type buttonMessage struct {
	UserID int64
	Text   string
	Label  string
	URL    string
}

type recordingNotifier struct {
	sent []buttonMessage
}

func (r *recordingNotifier) SendTextWithURLButton(userID int64, text, label, url string) error {
	r.sent = append(r.sent, buttonMessage{UserID: userID, Text: text, Label: label, URL: url})
	return nil
}

func sweepUser(id int64, subscribed bool, expiry *time.Time, swipes int) *models.User {
	return &models.User{
		UserID:             id,
		Name:               "u",
		IsSubscribed:       subscribed,
		SubscriptionExpiry: expiry,
		SwipeCount:         swipes,
		JoinDate:           time.Now(),
	}
}

func TestCheckSubscriptionExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mem := store.NewMemUsers()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	require.NoError(t, mem.Insert(ctx, sweepUser(1, true, &past, models.PremiumSwipeCount)))
	require.NoError(t, mem.Insert(ctx, sweepUser(2, true, &future, models.PremiumSwipeCount)))
	require.NoError(t, mem.Insert(ctx, sweepUser(3, false, nil, 5)))

	notifier := &recordingNotifier{}
	sw := New(mem, notifier, "https://t.me/testpay_bot")
	sw.now = func() time.Time { return now }

	require.NoError(t, sw.CheckSubscriptionExpiry(ctx))

	expired, err := mem.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, expired.IsSubscribed)
	assert.Equal(t, models.DefaultSwipeCount, expired.SwipeCount)

	still, err := mem.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, still.IsSubscribed)
	assert.Equal(t, models.PremiumSwipeCount, still.SwipeCount)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(1), notifier.sent[0].UserID)
	assert.Equal(t, "💎 Renew Premium", notifier.sent[0].Label)
	assert.Equal(t, "https://t.me/testpay_bot", notifier.sent[0].URL)
}

func TestCheckSubscriptionExpiryNothingExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	mem := store.NewMemUsers()
	future := now.Add(24 * time.Hour)
	require.NoError(t, mem.Insert(ctx, sweepUser(1, true, &future, models.PremiumSwipeCount)))

	notifier := &recordingNotifier{}
	sw := New(mem, notifier, "https://t.me/testpay_bot")

	require.NoError(t, sw.CheckSubscriptionExpiry(ctx))
	assert.Empty(t, notifier.sent)
}

func TestResetDailySwipes(t *testing.T) {
	ctx := context.Background()

	mem := store.NewMemUsers()
	require.NoError(t, mem.Insert(ctx, sweepUser(1, false, nil, 0)))
	require.NoError(t, mem.Insert(ctx, sweepUser(2, false, nil, 3)))
	require.NoError(t, mem.Insert(ctx, sweepUser(3, true, nil, models.PremiumSwipeCount)))

	sw := New(mem, &recordingNotifier{}, "https://t.me/testpay_bot")
	require.NoError(t, sw.ResetDailySwipes(ctx))

	for _, id := range []int64{1, 2} {
		u, err := mem.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSwipeCount, u.SwipeCount)
	}

	premium, err := mem.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.PremiumSwipeCount, premium.SwipeCount)

	// A second run is a no-op for anyone already at the allowance.
	require.NoError(t, sw.ResetDailySwipes(ctx))
	u, err := mem.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSwipeCount, u.SwipeCount)
}
