// Package sweeper runs the daily maintenance jobs: subscription expiry and
// the free-user swipe reset.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"lemon16/models"
)

// midnightSpec fires both jobs once a day.
const midnightSpec = "0 0 * * *"

type Store interface {
	ExpiredSubscribers(ctx context.Context, now time.Time) ([]models.User, error)
	Downgrade(ctx context.Context, userID int64) error
	ResetFreeSwipes(ctx context.Context) (int64, error)
}

type Notifier interface {
	SendTextWithURLButton(userID int64, text, label, url string) error
}

type Sweeper struct {
	store      Store
	notifier   Notifier
	premiumURL string
	now        func() time.Time
}

func New(store Store, notifier Notifier, premiumURL string) *Sweeper {
	return &Sweeper{store: store, notifier: notifier, premiumURL: premiumURL, now: time.Now}
}

// Schedule registers both jobs on the runner. The caller owns Start/Stop.
func (s *Sweeper) Schedule(runner *cron.Cron) error {
	if _, err := runner.AddFunc(midnightSpec, func() {
		if err := s.CheckSubscriptionExpiry(context.Background()); err != nil {
			log.Error().Err(err).Msg("subscription expiry sweep failed")
		}
	}); err != nil {
		return err
	}
	_, err := runner.AddFunc(midnightSpec, func() {
		if err := s.ResetDailySwipes(context.Background()); err != nil {
			log.Error().Err(err).Msg("daily swipe reset failed")
		}
	})
	return err
}

// CheckSubscriptionExpiry downgrades every subscribed user whose expiry has
// passed and tells them about it. A failure on one user is logged and the
// sweep moves on; the next run picks up any stragglers.
func (s *Sweeper) CheckSubscriptionExpiry(ctx context.Context) error {
	expired, err := s.store.ExpiredSubscribers(ctx, s.now())
	if err != nil {
		return err
	}

	for _, user := range expired {
		if err := s.store.Downgrade(ctx, user.UserID); err != nil {
			log.Error().Err(err).Int64("userId", user.UserID).Msg("downgrade failed")
			continue
		}
		if err := s.notifier.SendTextWithURLButton(
			user.UserID,
			"⚠️ Uh-oh, sugar… your premium access just ran out! Don't miss out—renew now! 💳",
			"💎 Renew Premium",
			s.premiumURL,
		); err != nil {
			log.Error().Err(err).Int64("userId", user.UserID).Msg("downgrade notification failed")
		}
	}

	log.Info().Int("expired", len(expired)).Msg("checked expired subscriptions")
	return nil
}

// ResetDailySwipes restores the daily allowance for every free user. Safe to
// run any number of times.
func (s *Sweeper) ResetDailySwipes(ctx context.Context) error {
	n, err := s.store.ResetFreeSwipes(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("users", n).Msg("daily swipes reset for free users")
	return nil
}
