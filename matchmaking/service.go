// Package matchmaking implements candidate resolution and swipe processing:
// preference filtering, swipe-allowance gating, mutual-like detection and the
// match notification fan-out.
package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"lemon16/models"
	"lemon16/store"
)

// ErrNoCandidates is returned when nobody is left to show the requester.
var ErrNoCandidates = errors.New("matchmaking: no candidates available")

// Notifier delivers outbound Telegram messages. Delivery is fire-and-forget:
// the service logs failures and never rolls back recorded swipes.
type Notifier interface {
	SendText(userID int64, text string) error
	SendTextWithURLButton(userID int64, text, label, url string) error
	SendPhotoWithURLButton(userID int64, fileID, caption, label, url string) error
}

type Service struct {
	users      store.Users
	notifier   Notifier
	premiumURL string
	now        func() time.Time
}

func New(users store.Users, notifier Notifier, premiumURL string) *Service {
	return &Service{
		users:      users,
		notifier:   notifier,
		premiumURL: premiumURL,
		now:        time.Now,
	}
}

// FindCandidate picks one eligible profile for the requester, uniformly at
// random. Eligible means: not the requester, not banned, mutual gender
// preference, and not already swiped on.
func (s *Service) FindCandidate(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []models.User
	for _, c := range all {
		if c.UserID == user.UserID || c.IsBanned {
			continue
		}
		if !wants(user.InterestedIn, c.Gender) || !wants(c.InterestedIn, user.Gender) {
			continue
		}
		if user.HasSwiped(c.UserID) {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	pick := candidates[rand.Intn(len(candidates))]
	return &pick, nil
}

// wants reports whether a profile with the given preference accepts the
// given gender.
func wants(interestedIn, gender string) bool {
	return interestedIn == models.InterestedInEveryone || interestedIn == gender
}

// Like records a swipe decision and returns whether it completed a mutual
// like. Gating (allowance, terminal decisions) happens inside the store's
// conditional update, so a like that returns nil here was recorded exactly
// once; match notifications therefore fire exactly once per completed
// transition.
func (s *Service) Like(ctx context.Context, userID, targetID int64) (bool, error) {
	target, err := s.users.Get(ctx, targetID)
	if err != nil {
		return false, err
	}

	if err := s.users.RecordLike(ctx, userID, targetID, s.now()); err != nil {
		return false, err
	}

	if !target.Likes(userID) {
		return false, nil
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return true, err
	}
	s.notifyMatch(user, target)
	s.notifyMatch(target, user)
	return true, nil
}

// notifyMatch tells recipient about their new match with counterpart. What
// the recipient sees depends on their own subscription: premium members get
// the counterpart's handle and a direct chat link, free members get an
// upgrade prompt.
func (s *Service) notifyMatch(recipient, counterpart *models.User) {
	caption := fmt.Sprintf("🎉 It's a match! You and %s like each other!", counterpart.Name)

	var label, url string
	if recipient.IsSubscribed {
		caption += fmt.Sprintf("\n\n🔗 Chat now: @%s", counterpart.Username)
		label = "💬 Chat Now"
		url = fmt.Sprintf("tg://user?id=%d", counterpart.UserID)
	} else {
		caption += "\n\n💎 Upgrade to premium to unlock usernames and chat!"
		label = "💎 Upgrade Now"
		url = s.premiumURL
	}

	if err := s.notifier.SendPhotoWithURLButton(recipient.UserID, counterpart.ProfilePic, caption, label, url); err != nil {
		log.Error().Err(err).Int64("userId", recipient.UserID).Msg("match notification failed")
	}
}

// Dislike records a negative swipe. Duplicates are no-ops; a prior like on
// the same target is rejected (decisions are terminal).
func (s *Service) Dislike(ctx context.Context, userID, targetID int64) error {
	return s.users.RecordDislike(ctx, userID, targetID, s.now())
}

// Matches returns every user the requester mutually likes.
func (s *Service) Matches(ctx context.Context, userID int64) ([]models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	var matches []models.User
	for _, c := range all {
		if c.UserID == user.UserID {
			continue
		}
		if user.Likes(c.UserID) && c.Likes(user.UserID) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}
