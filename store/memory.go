package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"lemon16/models"
)

// MemUsers is an in-memory Users implementation with the same conditional
// update semantics as MongoUsers. It backs the test suites and local runs
// without a database.
type MemUsers struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func NewMemUsers() *MemUsers {
	return &MemUsers{users: make(map[int64]*models.User)}
}

var _ Users = (*MemUsers)(nil)

func (s *MemUsers) Get(ctx context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemUsers) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.UserID] = &copied
	return nil
}

func (s *MemUsers) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *MemUsers) All(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (s *MemUsers) RecordLike(ctx context.Context, userID, targetID int64, now time.Time) error {
	if userID == targetID {
		return ErrSelfSwipe
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if user.HasSwiped(targetID) {
		return ErrAlreadySwiped
	}
	if !user.IsSubscribed {
		if user.SwipeCount <= 0 {
			return ErrOutOfSwipes
		}
		user.SwipeCount--
	}
	user.LikedUsers = append(user.LikedUsers, targetID)
	ts := now
	user.LastSwipe = &ts
	return nil
}

func (s *MemUsers) RecordDislike(ctx context.Context, userID, targetID int64, now time.Time) error {
	if userID == targetID {
		return ErrSelfSwipe
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if user.Likes(targetID) {
		return ErrAlreadySwiped
	}
	if !user.Dislikes(targetID) {
		user.DislikedUsers = append(user.DislikedUsers, targetID)
	}
	ts := now
	user.LastSwipe = &ts
	return nil
}

func (s *MemUsers) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return s.mutate(userID, func(u *models.User) {
		u.IsBanned = banned
	})
}

func (s *MemUsers) SetSubscription(ctx context.Context, userID int64, subscribed bool, expiry *time.Time, swipeCount int) error {
	return s.mutate(userID, func(u *models.User) {
		u.IsSubscribed = subscribed
		u.SubscriptionExpiry = expiry
		u.SwipeCount = swipeCount
	})
}

func (s *MemUsers) ApplyEdits(ctx context.Context, userID int64, edits Edits) error {
	return s.mutate(userID, func(u *models.User) {
		if edits.Name != nil {
			u.Name = *edits.Name
		}
		if edits.Age != nil {
			u.Age = *edits.Age
		}
		if edits.SwipeCount != nil {
			u.SwipeCount = *edits.SwipeCount
		}
	})
}

func (s *MemUsers) SetProfilePic(ctx context.Context, userID int64, fileID string) error {
	return s.mutate(userID, func(u *models.User) {
		u.ProfilePic = fileID
	})
}

func (s *MemUsers) ResetFreeSwipes(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if !u.IsSubscribed {
			u.SwipeCount = models.DefaultSwipeCount
			n++
		}
	}
	return n, nil
}

func (s *MemUsers) ExpiredSubscribers(ctx context.Context, now time.Time) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, u := range s.users {
		if u.IsSubscribed && u.SubscriptionExpiry != nil && u.SubscriptionExpiry.Before(now) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *MemUsers) Downgrade(ctx context.Context, userID int64) error {
	return s.mutate(userID, func(u *models.User) {
		u.IsSubscribed = false
		u.SwipeCount = models.DefaultSwipeCount
	})
}

func (s *MemUsers) Inactive(ctx context.Context, olderThan time.Time) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, u := range s.users {
		if u.LastSwipe != nil && u.LastSwipe.Before(olderThan) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *MemUsers) mutate(userID int64, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	fn(user)
	return nil
}

// MemLogs keeps the newest entries first, like the Mongo sort order.
type MemLogs struct {
	mu      sync.Mutex
	entries []models.LogEntry
}

func NewMemLogs() *MemLogs {
	return &MemLogs{}
}

var _ Logs = (*MemLogs)(nil)

func (s *MemLogs) Append(ctx context.Context, entry models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]models.LogEntry{entry}, s.entries...)
	return nil
}

func (s *MemLogs) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]models.LogEntry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

// MemSessions is an in-memory Sessions implementation. Expiry is left to the
// caller; tests drive the lifecycle explicitly.
type MemSessions struct {
	mu       sync.Mutex
	sessions map[int64]*models.Session
}

func NewMemSessions() *MemSessions {
	return &MemSessions{sessions: make(map[int64]*models.Session)}
}

var _ Sessions = (*MemSessions)(nil)

func (s *MemSessions) Get(ctx context.Context, userID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemSessions) Put(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now()
	copied := *session
	s.sessions[session.UserID] = &copied
	return nil
}

func (s *MemSessions) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
