package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/services"
	"github.com/gin-gonic/gin"
)

// BaseController serves the pizza bases referenced by Pizza.BaseID
type BaseController struct {
	service services.BaseService
}

func NewBaseController(service services.BaseService) *BaseController {
	return &BaseController{service: service}
}

// ListBases godoc
// @Summary List pizza bases
// @Tags bases
// @Produce json
// @Success 200 {array} models.Base
// @Failure 500 {object} models.APIError
// @Router /api/bases [get]
func (bc *BaseController) ListBases(c *gin.Context) {
	bases, err := bc.service.ListBases(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list bases")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve bases"))
		return
	}
	c.JSON(http.StatusOK, bases)
}

// CreateBase godoc
// @Summary Create a pizza base
// @Tags bases
// @Accept json
// @Produce json
// @Param base body models.Base true "Base object"
// @Success 201 {object} models.Base
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/bases [post]
func (bc *BaseController) CreateBase(c *gin.Context) {
	var base models.Base
	if err := c.ShouldBindJSON(&base); err != nil || base.Name == "" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
		return
	}
	base.ID = 0

	created, err := bc.service.CreateBase(c.Request.Context(), base)
	if err != nil {
		log.WithError(err).Error("Failed to create base")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to create base"))
		return
	}
	c.JSON(http.StatusCreated, created)
}
