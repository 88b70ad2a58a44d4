package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// Quantity is optional and defaults to one.
type AddToCartRequest struct {
	PizzaID  uint `json:"pizza_id" binding:"required"`
	Quantity *int `json:"quantity"`
}

// GetCart returns the caller's cart with line totals
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	view, err := ctrl.cartService.ViewCart(userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddToCart adds a pizza, merging with an existing line
// POST /api/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "pizza_id is required")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), userID, req.PizzaID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPizzaNotFound):
			apperrors.NotFound(c, apperrors.PizzaNotFound, "Pizza not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, err.Error())
		default:
			log.Error("Failed to add to cart", err, map[string]interface{}{
				"user_id":  userID,
				"pizza_id": req.PizzaID,
			})
			apperrors.ParseAndRespond(c, err, "add to cart")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Added to cart",
		"item":    item,
	})
}

// ClearCart removes every line
// DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to clear cart")
		return
	}

	c.Status(http.StatusNoContent)
}
