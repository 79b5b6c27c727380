package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/pizza-admin/internal/middleware"
	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/services"
	"github.com/gin-gonic/gin"
)

// PizzaController handles HTTP requests related to pizzas
type PizzaController interface {
	// ListPizzas retrieves all pizzas
	ListPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// CreatePizza creates a new pizza
	CreatePizza(c *gin.Context)
	// UpdatePizza replaces an existing pizza
	UpdatePizza(c *gin.Context)
	// DeletePizza deletes a pizza by its ID
	DeletePizza(c *gin.Context)
}

type controller struct {
	service services.PizzaService
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(service services.PizzaService) PizzaController {
	return &controller{service: service}
}

// ListPizzas godoc
// @Summary Get all pizzas
// @Description Get the full pizza collection ordered by ID
// @Tags pizzas
// @Produce json
// @Success 200 {array} models.Pizza
// @Failure 500 {object} models.APIError
// @Router /api/pizzas [get]
func (c *controller) ListPizzas(ctx *gin.Context) {
	pizzas, err := c.service.ListPizzas(ctx.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list pizzas")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve pizzas"))
		return
	}
	ctx.JSON(http.StatusOK, pizzas)
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Description Get a single pizza by its ID
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/pizzas/{id} [get]
func (c *controller) GetPizzaByID(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	pizza, err := c.service.GetPizzaByID(ctx.Request.Context(), pizzaID)
	if err != nil {
		respondPizzaError(ctx, err, "Failed to retrieve pizza")
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Description Create a new pizza with the input payload
// @Tags pizzas
// @Accept json
// @Produce json
// @Param pizza body models.Pizza true "Pizza object"
// @Success 201 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/pizzas [post]
func (c *controller) CreatePizza(ctx *gin.Context) {
	var pizza models.Pizza
	if err := ctx.ShouldBindJSON(&pizza); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrPizzaInvalidData, "Invalid request body"))
		return
	}

	pizza.ID = 0
	pizza.CreatedBy = ctx.GetUint(middleware.ContextUserID)

	created, err := c.service.CreatePizza(ctx.Request.Context(), pizza)
	if err != nil {
		log.WithError(err).Error("Failed to create pizza")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to create pizza"))
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// UpdatePizza godoc
// @Summary Replace a pizza
// @Description Replace a pizza with the input payload. The ID in the path wins over the body.
// @Tags pizzas
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body models.Pizza true "Pizza object"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/pizzas/{id} [put]
func (c *controller) UpdatePizza(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	var pizza models.Pizza
	if err := ctx.ShouldBindJSON(&pizza); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrPizzaInvalidData, "Invalid request body"))
		return
	}

	// Ensure the ID from URL is used
	pizza.ID = pizzaID

	updated, err := c.service.UpdatePizza(ctx.Request.Context(), pizza)
	if err != nil {
		respondPizzaError(ctx, err, "Failed to update pizza")
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// DeletePizza godoc
// @Summary Delete a pizza
// @Description Delete a pizza by its ID
// @Tags pizzas
// @Param id path int true "Pizza ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/pizzas/{id} [delete]
func (c *controller) DeletePizza(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	if err := c.service.DeletePizza(ctx.Request.Context(), pizzaID); err != nil {
		respondPizzaError(ctx, err, "Failed to delete pizza")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// pizzaIDParam parses the :id path parameter and responds with 400 when it is not a number
func pizzaIDParam(ctx *gin.Context) (int, bool) {
	pizzaID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid pizza ID format"))
		return 0, false
	}
	return pizzaID, true
}

func respondPizzaError(ctx *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrPizzaNotFound) {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPizzaNotFound, "Pizza not found"))
		return
	}
	log.WithError(err).Error(message)
	ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, message))
}
