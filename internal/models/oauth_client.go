package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is an API client allowed to obtain tokens with the client credentials grant.
// Secret holds a bcrypt hash, never the plain secret.
type OAuthClient struct {
	ID          string         `gorm:"primaryKey" json:"client_id"`
	Secret      string         `gorm:"not null" json:"-"`
	Name        string         `json:"name"`
	Domain      string         `json:"domain,omitempty"`
	UserID      uint           `json:"user_id"`     // Reference to User model for admin management
	Scopes      string         `json:"scopes"`      // Space-separated list of allowed scopes
	GrantTypes  string         `json:"grant_types"` // Space-separated list, e.g. "client_credentials"
	RedirectURI string         `json:"redirect_uri,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// The methods below satisfy oauth2.ClientInfo and oauth2.ClientPasswordVerifier.

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return false }

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares a plain secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
