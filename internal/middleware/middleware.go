package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Gin context keys set by OAuth2Auth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
)

// accessClaims mirrors auth.AccessClaims but accepts uid as a string or a number
type accessClaims struct {
	UID   any    `json:"uid"`
	Role  string `json:"role"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// OAuth2Auth validates the Bearer JWT issued by /oauth/token and stores the
// user ID, role, client ID and scopes in the gin context
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuedAt(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) { return jwtSecret, nil }

	return func(c *gin.Context) {
		// RFC 6750: Extract Bearer token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrAuthorizationRequired,
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidRequest,
				"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}
		if tokenString == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, "Bearer token is empty")
			return
		}

		var claims accessClaims
		if _, err := parser.ParseWithClaims(tokenString, &claims, keyFunc); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, describeTokenError(err))
			return
		}

		if err := setClaims(c, &claims); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, err.Error())
			return
		}

		c.Next()
	}
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}

func describeTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "token not yet valid"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	}
	return fmt.Sprintf("token parsing failed: %v", err)
}

// setClaims copies the validated claims into the gin context. uid and role are required.
func setClaims(c *gin.Context, claims *accessClaims) error {
	userID, err := parseUID(claims.UID)
	if err != nil {
		return err
	}
	if !models.IsKnownRole(claims.Role) {
		if claims.Role == "" {
			return errors.New("token missing required 'role' claim")
		}
		return fmt.Errorf("invalid role '%s'. Allowed roles: %s, %s", claims.Role, models.RoleAdmin, models.RoleUser)
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextUserRole, claims.Role)
	if len(claims.Audience) > 0 && claims.Audience[0] != "" {
		c.Set(ContextClientID, claims.Audience[0])
	}
	if claims.Scope != "" {
		c.Set(ContextScopes, claims.Scope)
	}
	return nil
}

// parseUID accepts the uid claim as a numeric string or a JSON number
func parseUID(raw any) (uint, error) {
	var id uint64
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %q", v)
		}
		id = parsed
	case float64:
		if v < 1 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %v", v)
		}
		id = uint64(v)
	case nil:
		return 0, errors.New("token missing required 'uid' claim")
	default:
		return 0, fmt.Errorf("invalid uid claim type %T", raw)
	}
	if id == 0 {
		return 0, errors.New("invalid user identifier: cannot be zero")
	}
	return uint(id), nil
}
