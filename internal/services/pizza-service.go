package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"gorm.io/gorm"
)

// ErrPizzaNotFound is returned when no pizza has the requested ID
var ErrPizzaNotFound = errors.New("pizza not found")

// PizzaService provides methods to interact with the pizza database.
// It also serves as the topping.PizzaStore of the backend's topping routes.
type PizzaService interface {
	// ListPizzas retrieves all pizzas from the database
	ListPizzas(ctx context.Context) ([]models.Pizza, error)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(ctx context.Context, id int) (models.Pizza, error)
	// CreatePizza creates a new pizza in the database
	CreatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error)
	// UpdatePizza replaces an existing pizza in the database
	UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error)
	// DeletePizza deletes a pizza from the database by its ID
	DeletePizza(ctx context.Context, id int) error
}

// pizzaService is the implementation of the PizzaService interface
type pizzaService struct {
	db *gorm.DB
}

// NewPizzaService creates a new instance of PizzaService
func NewPizzaService(db *gorm.DB) PizzaService {
	return &pizzaService{db: db}
}

func (s *pizzaService) ListPizzas(ctx context.Context) ([]models.Pizza, error) {
	var pizzas []models.Pizza
	if err := s.db.WithContext(ctx).Order("id").Find(&pizzas).Error; err != nil {
		return nil, err
	}
	return pizzas, nil
}

func (s *pizzaService) GetPizzaByID(ctx context.Context, id int) (models.Pizza, error) {
	var pizza models.Pizza
	if err := s.db.WithContext(ctx).First(&pizza, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Pizza{}, ErrPizzaNotFound
		}
		return models.Pizza{}, err
	}
	return pizza, nil
}

func (s *pizzaService) CreatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	if pizza.Toppings == nil {
		pizza.Toppings = []string{}
	}
	if err := s.db.WithContext(ctx).Create(&pizza).Error; err != nil {
		return models.Pizza{}, err
	}
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	existing, err := s.GetPizzaByID(ctx, pizza.ID)
	if err != nil {
		return models.Pizza{}, err
	}
	// Creation metadata is owned by the store, not by the caller
	pizza.CreatedAt = existing.CreatedAt
	pizza.CreatedBy = existing.CreatedBy
	if pizza.Toppings == nil {
		pizza.Toppings = []string{}
	}
	if err := s.db.WithContext(ctx).Save(&pizza).Error; err != nil {
		return models.Pizza{}, err
	}
	return pizza, nil
}

func (s *pizzaService) DeletePizza(ctx context.Context, id int) error {
	result := s.db.WithContext(ctx).Delete(&models.Pizza{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPizzaNotFound
	}
	return nil
}
