package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/topping"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// RenameToppingRequest is the body of PUT /api/toppings/{name}
type RenameToppingRequest struct {
	Name string `json:"name" binding:"required"`
}

// DeleteToppingsRequest is the body of DELETE /api/toppings
type DeleteToppingsRequest struct {
	Names []string `json:"names" binding:"required"`
}

// ToppingController exposes the topping projection and its rename/delete propagation
type ToppingController interface {
	// ListToppings returns the projection, filtered and sorted
	ListToppings(c *gin.Context)
	// RenameTopping renames a topping in every pizza that lists it
	RenameTopping(c *gin.Context)
	// DeleteToppings removes toppings from every pizza that lists them
	DeleteToppings(c *gin.Context)
}

type toppingController struct {
	store   topping.PizzaStore
	mutator topping.Mutator
}

// NewToppingController creates a ToppingController reading pizzas from store and
// writing topping changes through mutator
func NewToppingController(store topping.PizzaStore, mutator topping.Mutator) ToppingController {
	return &toppingController{store: store, mutator: mutator}
}

// ListToppings godoc
// @Summary List toppings
// @Description Distinct toppings across all pizzas with the number of times each is used
// @Tags toppings
// @Produce json
// @Param q query string false "Case-insensitive substring filter"
// @Param sort query string false "Sort mode: name, name-desc, usage"
// @Success 200 {array} topping.Topping
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/toppings [get]
func (c *toppingController) ListToppings(ctx *gin.Context) {
	mode, err := topping.ParseSortMode(ctx.Query("sort"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error()))
		return
	}

	pizzas, err := c.store.ListPizzas(ctx.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list pizzas for topping index")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve toppings"))
		return
	}

	// The server keeps no recent list, so "recent" falls back to alphabetical
	toppings := topping.SortToppings(topping.FilterToppings(topping.BuildIndex(pizzas), ctx.Query("q")), mode, nil)
	ctx.JSON(http.StatusOK, toppings)
}

// RenameTopping godoc
// @Summary Rename a topping
// @Description Replace the topping in every pizza that lists it. Pizzas are updated independently; on partial failure the successful updates are kept.
// @Tags toppings
// @Accept json
// @Produce json
// @Param name path string true "Current topping name"
// @Param body body RenameToppingRequest true "New name"
// @Success 200 {object} topping.Result
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/toppings/{name} [put]
func (c *toppingController) RenameTopping(ctx *gin.Context) {
	var req RenameToppingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrToppingInvalid, "Invalid request body"))
		return
	}

	// Writes already dispatched must finish even if the caller goes away
	mutationCtx := context.WithoutCancel(ctx.Request.Context())

	oldName := ctx.Param("name")
	pizzas, err := c.store.ListPizzas(mutationCtx)
	if err != nil {
		log.WithError(err).Error("Failed to list pizzas for topping rename")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve toppings"))
		return
	}
	if _, ok := topping.Find(topping.BuildIndex(pizzas), oldName); !ok {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrToppingNotFound, "Topping not found").
			WithDetail("name", oldName))
		return
	}

	result, err := c.mutator.Rename(mutationCtx, oldName, req.Name)
	if err != nil {
		respondToppingError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// DeleteToppings godoc
// @Summary Delete toppings
// @Description Remove the given toppings from every pizza that lists them
// @Tags toppings
// @Accept json
// @Produce json
// @Param body body DeleteToppingsRequest true "Topping names"
// @Success 200 {object} topping.Result
// @Failure 400 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/toppings [delete]
func (c *toppingController) DeleteToppings(ctx *gin.Context) {
	var req DeleteToppingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrToppingInvalid, "Invalid request body"))
		return
	}

	result, err := c.mutator.Delete(context.WithoutCancel(ctx.Request.Context()), req.Names)
	if err != nil {
		respondToppingError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// respondToppingError maps coordinator errors to API responses
func respondToppingError(ctx *gin.Context, err error) {
	var dup *topping.DuplicateNameError
	var batch *topping.BatchError
	switch {
	case errors.As(err, &dup):
		ctx.JSON(http.StatusConflict, models.NewAPIError(models.ErrToppingDuplicate, dup.Error()).
			WithDetail("existing", dup.Existing))
	case topping.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrToppingInvalid, err.Error()))
	case errors.As(err, &batch):
		log.WithFields(logrus.Fields{
			"op":     batch.Op,
			"failed": batch.FailedIDs(),
		}).WithError(err).Error("Topping propagation partially failed")
		ctx.JSON(http.StatusBadGateway, models.NewAPIError(models.ErrToppingPartialUpdate, err.Error()).
			WithDetail("failed_ids", batch.FailedIDs()).
			WithDetail("succeeded_ids", batch.Succeeded))
	default:
		log.WithError(err).Error("Topping update failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to update toppings"))
	}
}
