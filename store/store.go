package store

import (
	"context"
	"errors"
	"time"

	"lemon16/models"
)

var (
	// ErrNotFound is returned for by-id operations on a missing user.
	ErrNotFound = errors.New("store: user not found")
	// ErrOutOfSwipes is returned when a free user with no remaining swipes
	// tries to record a like. The user document is left unchanged.
	ErrOutOfSwipes = errors.New("store: out of swipes")
	// ErrAlreadySwiped is returned when the target already appears in the
	// requester's liked or disliked set. Swipe decisions are terminal.
	ErrAlreadySwiped = errors.New("store: already swiped on this user")
	// ErrSelfSwipe is returned when a user tries to swipe on themselves.
	// Callback data comes from the client, so the store cannot trust it.
	ErrSelfSwipe = errors.New("store: cannot swipe on yourself")
)

// Edits is a partial update applied by the admin dashboard. Nil fields are
// left untouched.
type Edits struct {
	Name       *string
	Age        *int
	SwipeCount *int
}

// Users is the persisted user-profile collection.
//
// RecordLike and RecordDislike are single conditional updates: the swipe
// allowance check, the disjointness of liked/disliked sets and the mutation
// happen in one operation, so concurrent swipes cannot double-decrement or
// record both decisions for the same pair.
type Users interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID int64) error
	All(ctx context.Context) ([]models.User, error)

	RecordLike(ctx context.Context, userID, targetID int64, now time.Time) error
	RecordDislike(ctx context.Context, userID, targetID int64, now time.Time) error

	SetBanned(ctx context.Context, userID int64, banned bool) error
	SetSubscription(ctx context.Context, userID int64, subscribed bool, expiry *time.Time, swipeCount int) error
	ApplyEdits(ctx context.Context, userID int64, edits Edits) error
	SetProfilePic(ctx context.Context, userID int64, fileID string) error

	ResetFreeSwipes(ctx context.Context) (int64, error)
	ExpiredSubscribers(ctx context.Context, now time.Time) ([]models.User, error)
	Downgrade(ctx context.Context, userID int64) error
	Inactive(ctx context.Context, olderThan time.Time) ([]models.User, error)
}

// Logs is the append-only admin activity trail. Retention is the backend's
// concern (the Mongo implementation uses a TTL index).
type Logs interface {
	Append(ctx context.Context, entry models.LogEntry) error
	Recent(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// Sessions holds in-progress onboarding state keyed by Telegram user id.
// Abandoned sessions expire server-side.
type Sessions interface {
	Get(ctx context.Context, userID int64) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, userID int64) error
}
