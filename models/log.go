package models

import "time"

// LogEntry is one line of the admin activity log. UserID is a string because
// system-level actions are recorded under the actor "Admin" rather than a
// Telegram id.
type LogEntry struct {
	UserID    string    `bson:"userId" json:"userId"`
	Action    string    `bson:"action" json:"action"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
