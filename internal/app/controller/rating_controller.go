package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

type CreateRatingRequest struct {
	PizzaID uint   `json:"pizza_id" binding:"required"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateRating records a rating for a pizza
// POST /api/rate-pizza
func (ctrl *RatingController) CreateRating(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "pizza_id and rating are required")
		return
	}

	rating, err := ctrl.ratingService.CreateRating(c.Request.Context(), userID, req.PizzaID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrPizzaNotFound):
			apperrors.NotFound(c, apperrors.PizzaNotFound, "Pizza not found")
		default:
			apperrors.ParseAndRespond(c, err, "create rating")
		}
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// ListRatings returns every rating, optionally for one pizza
// GET /api/rate-pizza?pizza_id=
func (ctrl *RatingController) ListRatings(c *gin.Context) {
	pizzaID, ok := parseOptionalIDQuery(c, "pizza_id")
	if !ok {
		return
	}

	ratings, err := ctrl.ratingService.ListRatings(pizzaID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch ratings")
		return
	}
	c.JSON(http.StatusOK, ratings)
}
