package models

import "time"

// SessionKey is one row from a session-key partition table. Which partition
// it came from (frontend, roku or display) is not part of the row itself;
// the session class that selected the table carries that information.
type SessionKey struct {
	ID           int64
	UserID       int64
	Key          string
	CreationTime time.Time
	LastUsedTime time.Time
}
