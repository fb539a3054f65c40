package models

import "time"

// Gender values collected during onboarding.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// InterestedIn is stored with the same vocabulary as Gender, plus "everyone",
// so preference matching is a direct comparison.
const InterestedInEveryone = "everyone"

// DefaultSwipeCount is the daily allowance for free users.
const DefaultSwipeCount = 20

// PremiumSwipeCount is the effectively-unlimited allowance set when an admin
// grants premium.
const PremiumSwipeCount = 9999

type User struct {
	UserID             int64      `bson:"userId" json:"userId"`
	Username           string     `bson:"username" json:"username"`
	Name               string     `bson:"name" json:"name"`
	Age                int        `bson:"age" json:"age"`
	Gender             string     `bson:"gender" json:"gender"`
	Location           string     `bson:"location" json:"location"`
	Interests          string     `bson:"interests" json:"interests"`
	InterestedIn       string     `bson:"interestedIn" json:"interestedIn"`
	ProfilePic         string     `bson:"profilePic" json:"profilePic"` // Telegram file_id
	IsSubscribed       bool       `bson:"isSubscribed" json:"isSubscribed"`
	SubscriptionExpiry *time.Time `bson:"subscriptionExpiry,omitempty" json:"subscriptionExpiry,omitempty"`
	SwipeCount         int        `bson:"swipeCount" json:"swipeCount"`
	LikedUsers         []int64    `bson:"likedUsers" json:"likedUsers"`
	DislikedUsers      []int64    `bson:"dislikedUsers" json:"dislikedUsers"`
	IsBanned           bool       `bson:"isBanned" json:"isBanned"`
	JoinDate           time.Time  `bson:"joinDate" json:"joinDate"`
	LastSwipe          *time.Time `bson:"lastSwipe,omitempty" json:"lastSwipe,omitempty"`
}

// Likes reports whether the user has liked target.
func (u *User) Likes(target int64) bool {
	for _, id := range u.LikedUsers {
		if id == target {
			return true
		}
	}
	return false
}

// Dislikes reports whether the user has disliked target.
func (u *User) Dislikes(target int64) bool {
	for _, id := range u.DislikedUsers {
		if id == target {
			return true
		}
	}
	return false
}

// HasSwiped reports whether the user already made a decision on target.
func (u *User) HasSwiped(target int64) bool {
	return u.Likes(target) || u.Dislikes(target)
}
