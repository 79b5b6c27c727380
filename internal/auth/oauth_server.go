package auth

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AccessTokenTTL is the lifetime of tokens issued to admin clients
const AccessTokenTTL = 2 * time.Hour

// ErrInvalidClientCredentials is returned for an unknown client or a wrong
// secret. The two cases are not distinguished.
var ErrInvalidClientCredentials = errors.New("invalid client credentials")

// OAuthService issues access tokens to the admin clients that edit pizzas.
// Only the client credentials grant is enabled.
type OAuthService struct {
	server  *server.Server
	clients *GormClientStore
}

func NewOAuthService(db *gorm.DB, jwtSecret string) *OAuthService {
	clients := NewGormClientStore(db)
	tokens := NewGormTokenStore(db)

	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: AccessTokenTTL})
	manager.MapAccessGenerate(NewJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))
	manager.MustTokenStorage(tokens, nil)
	manager.MapClientStorage(clients)

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetAllowGetAccessRequest(false)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{
		server:  srv,
		clients: clients,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// Authenticate loads the client and checks its secret against the stored
// bcrypt hash
func (o *OAuthService) Authenticate(ctx context.Context, clientID, secret string) (*models.OAuthClient, error) {
	client, err := o.clients.lookup(ctx, clientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidClientCredentials
	}
	if err != nil {
		return nil, err
	}
	if !client.VerifyPassword(secret) {
		return nil, ErrInvalidClientCredentials
	}
	return client, nil
}

// IssueToken generates and stores an access token for an authenticated client
func (o *OAuthService) IssueToken(ctx context.Context, client *models.OAuthClient, secret string) (oauth2.TokenInfo, error) {
	return o.server.Manager.GenerateAccessToken(ctx, oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     client.ID,
		ClientSecret: secret,
		Scope:        client.Scopes,
	})
}
