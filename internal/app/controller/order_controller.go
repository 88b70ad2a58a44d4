package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaymentMode   string `json:"payment_mode"`
}

func (r CheckoutRequest) mode() string {
	if r.PaymentMethod != "" {
		return r.PaymentMethod
	}
	return r.PaymentMode
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// Checkout turns the caller's cart into an order
// POST /api/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, req.mode())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentMode):
			apperrors.BadRequest(c, apperrors.OrderInvalidPaymentMode, "payment_method must be cod or online")
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, err, "create order")
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the caller's orders, newest first
// GET /api/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns an order the caller bought or delivers
// GET /api/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		respondOrderLookupError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdatePaymentStatus sets pending, paid or failed (admin)
// PATCH /api/orders/:id/payment
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "payment_status is required")
		return
	}

	order, err := ctrl.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, req.PaymentStatus)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPaymentStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidPaymentStatus, "payment_status must be pending, paid or failed")
			return
		}
		respondOrderLookupError(c, err, "update order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetTrackingQRCode renders the order's tracking link as a PNG
// GET /api/orders/:id/qrcode
func (ctrl *OrderController) GetTrackingQRCode(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	png, err := ctrl.orderService.TrackingQRCode(userID, orderID)
	if err != nil {
		respondOrderLookupError(c, err, "get order")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func respondOrderLookupError(c *gin.Context, err error, context string) {
	if errors.Is(err, service.ErrOrderNotFound) {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}
	middleware.GetLoggerFromContext(c).Error("Order request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, err, context)
}
