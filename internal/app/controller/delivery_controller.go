package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
)

type DeliveryController struct {
	deliveryService service.DeliveryService
}

func NewDeliveryController(deliveryService service.DeliveryService) *DeliveryController {
	return &DeliveryController{
		deliveryService: deliveryService,
	}
}

// UpdateDeliveryRequest accepts both the short and the delivery_ prefixed field names.
type UpdateDeliveryRequest struct {
	Status          string `json:"status"`
	DeliveryStatus  string `json:"delivery_status"`
	Comment         string `json:"comment"`
	DeliveryComment string `json:"delivery_comment"`
}

func (r UpdateDeliveryRequest) status() string {
	if r.Status != "" {
		return r.Status
	}
	return r.DeliveryStatus
}

func (r UpdateDeliveryRequest) comment() string {
	if r.Comment != "" {
		return r.Comment
	}
	return r.DeliveryComment
}

type AddCommentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// UpdateDelivery sets status and/or comment on an order assigned to the caller
// POST /api/delivery/:order_id
// PATCH /api/orders/:id/update-status
func (ctrl *DeliveryController) UpdateDelivery(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, ok := requireUserID(c)
	if !ok {
		return
	}

	param := "order_id"
	if c.Param("id") != "" {
		param = "id"
	}
	orderID, ok := parseIDParam(c, param)
	if !ok {
		return
	}

	var req UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	order, err := ctrl.deliveryService.UpdateDelivery(c.Request.Context(), partnerID, orderID, req.status(), req.comment())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found or not assigned to you")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "status must be one of pending, preparing, out_for_delivery, delivered, cancelled")
		case errors.Is(err, service.ErrNothingToUpdate):
			apperrors.BadRequest(c, apperrors.OrderNothingToUpdate, err.Error())
		default:
			log.Error("Delivery update failed", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.ParseAndRespond(c, err, "update order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery updated",
		"order":   order,
	})
}

// ListAssignedOrders returns orders assigned to the calling partner
// GET /api/delivery/orders
func (ctrl *DeliveryController) ListAssignedOrders(c *gin.Context) {
	partnerID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.deliveryService.ListAssignedOrders(partnerID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch assigned orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// AddComment appends a delivery note
// POST /api/delivery-comments
func (ctrl *DeliveryController) AddComment(c *gin.Context) {
	partnerID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "order_id and comment are required")
		return
	}

	entry, err := ctrl.deliveryService.AddComment(c.Request.Context(), partnerID, req.OrderID, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		default:
			respondOrderLookupError(c, err, "create comment")
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListComments returns the delivery notes of an order the caller can see
// GET /api/delivery-comments?order_id=
func (ctrl *DeliveryController) ListComments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseOptionalIDQuery(c, "order_id")
	if !ok {
		return
	}
	if orderID == nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "order_id is required")
		return
	}

	comments, err := ctrl.deliveryService.ListComments(userID, *orderID)
	if err != nil {
		respondOrderLookupError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, comments)
}
