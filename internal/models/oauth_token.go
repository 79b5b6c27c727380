package models

import (
	"time"
)

// OAuthToken is an access token issued by /oauth/token. Tokens are kept
// until they expire so they can be revoked by access string.
type OAuthToken struct {
	ID           uint    `gorm:"primaryKey"`
	ClientID     string  `gorm:"index;not null"`
	UserID       *string // owner of the client under client credentials
	AccessToken  string  `gorm:"uniqueIndex;not null"`
	RefreshToken *string `gorm:"index"`
	Scopes       string
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// Expired reports whether the token is no longer valid at now
func (t OAuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
