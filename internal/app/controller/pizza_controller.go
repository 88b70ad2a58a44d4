package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	"github.com/ikkim/pizza-delivery-backend/internal/storage"
	"github.com/shopspring/decimal"
)

type PizzaController struct {
	pizzaService service.PizzaService
}

func NewPizzaController(pizzaService service.PizzaService) *PizzaController {
	return &PizzaController{
		pizzaService: pizzaService,
	}
}

type CreatePizzaRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Type        string           `json:"type" binding:"required"`
	IsAvailable *bool            `json:"is_available"`
	ImageURL    string           `json:"image_url"`
}

type UpdatePizzaRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Type        *string          `json:"type"`
	IsAvailable *bool            `json:"is_available"`
	ImageURL    *string          `json:"image_url"`
}

type ImageUploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ListPizzas returns the menu
// GET /api/pizzas?type=veg&available=true
func (ctrl *PizzaController) ListPizzas(c *gin.Context) {
	var opts service.PizzaListOptions
	if raw := c.Query("type"); raw != "" {
		pizzaType := model.PizzaType(raw)
		opts.Type = &pizzaType
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "available must be true or false")
			return
		}
		opts.IsAvailable = &available
	}

	pizzas, err := ctrl.pizzaService.ListPizzas(opts)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPizzaType) {
			apperrors.BadRequest(c, apperrors.PizzaInvalidType, err.Error())
			return
		}
		apperrors.ParseAndRespond(c, err, "list pizzas")
		return
	}

	c.JSON(http.StatusOK, pizzas)
}

// GetPizza returns one pizza
// GET /api/pizzas/:id
func (ctrl *PizzaController) GetPizza(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pizza, err := ctrl.pizzaService.GetPizza(id)
	if err != nil {
		ctrl.respondPizzaError(c, err, "get pizza")
		return
	}
	c.JSON(http.StatusOK, pizza)
}

// CreatePizza adds a menu entry (admin)
// POST /api/pizzas
func (ctrl *PizzaController) CreatePizza(c *gin.Context) {
	var req CreatePizzaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid create pizza request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name, price and type are required")
		return
	}

	pizza, err := ctrl.pizzaService.CreatePizza(service.PizzaInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Type:        model.PizzaType(req.Type),
		IsAvailable: req.IsAvailable,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		ctrl.respondPizzaError(c, err, "create pizza")
		return
	}
	c.JSON(http.StatusCreated, pizza)
}

// UpdatePizza applies a partial update (admin)
// PATCH /api/pizzas/:id
func (ctrl *PizzaController) UpdatePizza(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePizzaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	update := service.PizzaUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
		ImageURL:    req.ImageURL,
	}
	if req.Type != nil {
		pizzaType := model.PizzaType(*req.Type)
		update.Type = &pizzaType
	}

	pizza, err := ctrl.pizzaService.UpdatePizza(id, update)
	if err != nil {
		ctrl.respondPizzaError(c, err, "update pizza")
		return
	}
	c.JSON(http.StatusOK, pizza)
}

// DeletePizza removes a pizza with its cart lines, order lines and ratings (admin)
// DELETE /api/pizzas/:id
func (ctrl *PizzaController) DeletePizza(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.pizzaService.DeletePizza(id); err != nil {
		ctrl.respondPizzaError(c, err, "delete pizza")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateImageUploadURL returns a presigned S3 PUT URL for a pizza photo (admin)
// POST /api/pizzas/image-upload-url
func (ctrl *PizzaController) CreateImageUploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ImageUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	upload, err := ctrl.pizzaService.CreateImageUploadURL(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrContentTypeNotAllowed):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WEBP images are allowed")
		case errors.Is(err, service.ErrUploadUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadUnavailable, err.Error())
		default:
			log.Error("Failed to create upload URL", err)
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to create upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, upload)
}

func (ctrl *PizzaController) respondPizzaError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrPizzaNotFound):
		apperrors.NotFound(c, apperrors.PizzaNotFound, "Pizza not found")
	case errors.Is(err, service.ErrInvalidPrice):
		apperrors.BadRequest(c, apperrors.PizzaInvalidPrice, err.Error())
	case errors.Is(err, service.ErrInvalidPizzaType):
		apperrors.BadRequest(c, apperrors.PizzaInvalidType, err.Error())
	case errors.Is(err, service.ErrInvalidPizzaName):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Pizza request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, err, context)
	}
}
