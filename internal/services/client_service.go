package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"gorm.io/gorm"
)

// ErrClientNotFound is returned when a client does not exist or is owned by someone else
var ErrClientNotFound = errors.New("client_not_found")

// ClientService manages the OAuth clients owned by users. Every method except
// GetClientByID is scoped to the owner.
type ClientService interface {
	CreateClient(ctx context.Context, client *models.OAuthClient) error
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, client *models.OAuthClient) error {
	if client.ID == "" || client.Secret == "" {
		return fmt.Errorf("client ID and secret hash are required")
	}
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient soft-deletes the client and drops the tokens issued to it
func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClientNotFound
		}
		return tx.Where("client_id = ?", clientID).Delete(&models.OAuthToken{}).Error
	})
}
