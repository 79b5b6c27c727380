package services

import (
	"context"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"gorm.io/gorm"
)

type BaseService interface {
	ListBases(ctx context.Context) ([]models.Base, error)
	CreateBase(ctx context.Context, base models.Base) (models.Base, error)
}

type baseService struct {
	db *gorm.DB
}

func NewBaseService(db *gorm.DB) BaseService {
	return &baseService{db: db}
}

func (s *baseService) ListBases(ctx context.Context) ([]models.Base, error) {
	var bases []models.Base
	if err := s.db.WithContext(ctx).Order("id").Find(&bases).Error; err != nil {
		return nil, err
	}
	return bases, nil
}

func (s *baseService) CreateBase(ctx context.Context, base models.Base) (models.Base, error) {
	if err := s.db.WithContext(ctx).Create(&base).Error; err != nil {
		return models.Base{}, err
	}
	return base, nil
}
