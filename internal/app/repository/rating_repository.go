package repository

import (
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

type RatingRepository interface {
	Create(rating *model.Rating) error
	FindAll(pizzaID *uint) ([]model.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"user_id":  rating.UserID,
		"pizza_id": rating.PizzaID,
		"rating":   rating.Rating,
	})

	if err := r.db.Create(rating).Error; err != nil {
		logger.Error("Failed to create rating in database", err, map[string]interface{}{
			"user_id":  rating.UserID,
			"pizza_id": rating.PizzaID,
		})
		return err
	}

	logger.Debug("Rating created in database", map[string]interface{}{
		"rating_id": rating.ID,
	})
	return nil
}

// FindAll returns ratings in insertion order, optionally for one pizza.
func (r *ratingRepository) FindAll(pizzaID *uint) ([]model.Rating, error) {
	query := r.db.Model(&model.Rating{})
	if pizzaID != nil {
		query = query.Where("pizza_id = ?", *pizzaID)
	}

	var ratings []model.Rating
	if err := query.Order("id").Find(&ratings).Error; err != nil {
		logger.Error("Failed to find ratings in database", err, map[string]interface{}{
			"pizza_id": pizzaID,
		})
		return nil, err
	}

	logger.Debug("Ratings found in database", map[string]interface{}{
		"count": len(ratings),
	})
	return ratings, nil
}
