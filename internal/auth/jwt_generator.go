package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessClaims are the claims of every access token. uid and role are read
// back by middleware.OAuth2Auth; aud is the client that asked for the token.
type AccessClaims struct {
	UID   string `json:"uid"`
	Role  string `json:"role"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// JWTAccessGenerate signs access tokens for the oauth2 manager. The role is
// always looked up in the database, never taken from the request.
type JWTAccessGenerate struct {
	key    []byte
	method jwt.SigningMethod
	db     *gorm.DB
}

func NewJWTAccessGenerate(key []byte, method jwt.SigningMethod, db *gorm.DB) *JWTAccessGenerate {
	return &JWTAccessGenerate{key: key, method: method, db: db}
}

// Token implements oauth2.AccessGenerate
func (g *JWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// Under client credentials GenerateBasic.UserID is empty and the
	// client's owner acts as the user
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token for client %s: no user ID available", data.Client.GetID())
	}

	owner, err := g.lookupUser(ctx, userID)
	if err != nil {
		return "", "", err
	}

	issuedAt := data.TokenInfo.GetAccessCreateAt()
	claims := AccessClaims{
		UID:   userID,
		Role:  owner.EffectiveRole(),
		Scope: data.TokenInfo.GetScope(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{data.Client.GetID()},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(data.TokenInfo.GetAccessExpiresIn())),
		},
	}

	access, err := jwt.NewWithClaims(g.method, claims).SignedString(g.key)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	if !isGenRefresh {
		return access, "", nil
	}

	refreshClaims := jwt.RegisteredClaims{
		ID:        claims.ID,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(data.TokenInfo.GetRefreshCreateAt().Add(data.TokenInfo.GetRefreshExpiresIn())),
	}
	refresh, err := jwt.NewWithClaims(g.method, refreshClaims).SignedString(g.key)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return access, refresh, nil
}

func (g *JWTAccessGenerate) lookupUser(ctx context.Context, rawID string) (models.User, error) {
	var user models.User
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return user, fmt.Errorf("invalid user ID format %q: %w", rawID, err)
	}

	err = g.db.WithContext(ctx).Select("id", "role").First(&user, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user, fmt.Errorf("user with ID %d not found", id)
	case err != nil:
		return user, fmt.Errorf("fetch user role: %w", err)
	}
	return user, nil
}
