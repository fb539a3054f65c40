package models

import "time"

// Onboarding stages, in order. A session holds the answers collected so far;
// the user document is only created once the profile photo arrives.
const (
	StageName         = "name"
	StageAge          = "age"
	StageGender       = "gender"
	StageLocation     = "location"
	StageInterests    = "interests"
	StageInterestedIn = "interested_in"
	StagePhoto        = "photo"
)

type Session struct {
	UserID       int64     `bson:"userId" json:"userId"`
	Stage        string    `bson:"stage" json:"stage"`
	Name         string    `bson:"name" json:"name"`
	Age          int       `bson:"age" json:"age"`
	Gender       string    `bson:"gender" json:"gender"`
	Location     string    `bson:"location" json:"location"`
	Interests    string    `bson:"interests" json:"interests"`
	InterestedIn string    `bson:"interestedIn" json:"interestedIn"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
