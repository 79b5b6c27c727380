package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenPath is the backend's client credentials endpoint
const tokenPath = "/oauth/token"

// expiryLeeway renews a token slightly before the server expires it
const expiryLeeway = 30 * time.Second

// newTokenSource returns a cached client credentials token source. Tokens are
// fetched through hc; the backend reads the credentials from the form body.
func newTokenSource(hc *http.Client, baseURL, clientID, clientSecret string) oauth2.TokenSource {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
	fetch := tokenFunc(func() (*oauth2.Token, error) { return cfg.Token(ctx) })
	return oauth2.ReuseTokenSourceWithExpiry(nil, fetch, expiryLeeway)
}

// tokenFunc requests a new token on every call; caching is left to the
// reusing source wrapped around it
type tokenFunc func() (*oauth2.Token, error)

func (f tokenFunc) Token() (*oauth2.Token, error) { return f() }

// bearerToken returns the current access token, turning a rejected token
// request into a StatusError
func (c *Client) bearerToken() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", &StatusError{
				Method:     http.MethodPost,
				URL:        c.baseURL + tokenPath,
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       strings.TrimSpace(string(retrieveErr.Body)),
			}
		}
		return "", fmt.Errorf("request token: %w", err)
	}
	c.log.WithField("expiry", tok.Expiry).Debug("Using access token")
	return tok.AccessToken, nil
}
