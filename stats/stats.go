// Package stats computes the dashboard snapshot. Everything is recomputed
// from scratch on each trigger; there is no incremental maintenance.
package stats

import (
	"context"
	"time"

	"lemon16/models"
)

// InactiveAfter is how long a user can go without swiping before counting as
// inactive.
const InactiveAfter = 30 * 24 * time.Hour

// Store is the read surface the aggregator needs.
type Store interface {
	All(ctx context.Context) ([]models.User, error)
}

// Snapshot is the aggregate state pushed to dashboard clients.
type Snapshot struct {
	TotalUsers    int           `json:"totalUsers"`
	PremiumUsers  int           `json:"premiumUsers"`
	FreeUsers     int           `json:"freeUsers"`
	MatchesToday  int           `json:"matchesToday"`
	InactiveUsers int           `json:"inactiveUsers"`
	AllUsers      []models.User `json:"allUsers"`
}

type Aggregator struct {
	users Store
	now   func() time.Time
}

func New(users Store) *Aggregator {
	return &Aggregator{users: users, now: time.Now}
}

// ComputeSnapshot walks the full user list once and derives every counter.
func (a *Aggregator) ComputeSnapshot(ctx context.Context) (*Snapshot, error) {
	all, err := a.users.All(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	inactiveThreshold := now.Add(-InactiveAfter)

	snap := &Snapshot{
		TotalUsers: len(all),
		AllUsers:   all,
	}

	byID := make(map[int64]*models.User, len(all))
	for i := range all {
		byID[all[i].UserID] = &all[i]
	}

	// Matches today: count directed liked-edges whose source swiped today and
	// whose target likes back, then halve. A pair only counts once both sides
	// swiped today; integer division floors the odd leftover.
	edges := 0
	for i := range all {
		u := &all[i]
		if u.IsSubscribed {
			snap.PremiumUsers++
		}
		if u.LastSwipe != nil && u.LastSwipe.Before(inactiveThreshold) {
			snap.InactiveUsers++
		}
		if u.LastSwipe == nil || u.LastSwipe.Before(startOfToday) {
			continue
		}
		for _, likedID := range u.LikedUsers {
			if target, ok := byID[likedID]; ok && target.Likes(u.UserID) {
				edges++
			}
		}
	}
	snap.MatchesToday = edges / 2
	snap.FreeUsers = snap.TotalUsers - snap.PremiumUsers

	return snap, nil
}
