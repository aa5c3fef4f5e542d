package models

import "time"

// SessionIdleTimeout is the inactivity window after which a session expires.
const SessionIdleTimeout = 2 * time.Hour

// Session is a server-side session record. Expiry is driven by the
// last-activity timestamp, not a fixed lifetime.
type Session struct {
	ID             string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	CreatedAt      time.Time   `json:"created_at"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	Revoked        bool        `gorm:"default:false" json:"revoked"`
	User           UserProfile `gorm:"foreignKey:UserID" json:"-"`
}

// Expired reports whether the session has been idle longer than the timeout.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.LastActivityAt) > SessionIdleTimeout
}
