package auth

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")

	switch grantType {
	case "client_credentials":
		o.handleClientCredentials(c)
	default:
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType,
			"only the client_credentials grant is supported"))
	}
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest,
			"client_id and client_secret are required"))
		return
	}

	client, err := o.Authenticate(c.Request.Context(), clientID, clientSecret)
	if err != nil {
		if !errors.Is(err, ErrInvalidClientCredentials) {
			log.WithError(err).Error("Failed to load OAuth client")
		}
		log.WithField("client_id", clientID).Warn("Client authentication failed")
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, ErrInvalidClientCredentials.Error()))
		return
	}

	ti, err := o.IssueToken(c.Request.Context(), client, clientSecret)
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error(models.ErrServerError, "token generation failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn().Seconds()),
		"scope":        ti.GetScope(),
	})
}
