package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type RatingService interface {
	CreateRating(ctx context.Context, userID, pizzaID uint, rating int, comment string) (*model.Rating, error)
	ListRatings(pizzaID *uint) ([]model.Rating, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	pizzaRepo  repository.PizzaRepository
	notify     notifier
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	pizzaRepo repository.PizzaRepository,
	publisher events.Publisher,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		pizzaRepo:  pizzaRepo,
		notify:     notifier{publisher: publisher},
	}
}

// CreateRating always appends; a user may rate the same pizza many times.
func (s *ratingService) CreateRating(ctx context.Context, userID, pizzaID uint, rating int, comment string) (*model.Rating, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		logger.Warn("Rating rejected: out of range", map[string]interface{}{
			"user_id": userID,
			"rating":  rating,
		})
		return nil, ErrInvalidRating
	}

	if _, err := s.pizzaRepo.FindByID(pizzaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPizzaNotFound
		}
		return nil, err
	}

	entry := &model.Rating{
		UserID:  userID,
		PizzaID: pizzaID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}
	if err := s.ratingRepo.Create(entry); err != nil {
		return nil, err
	}

	logger.Info("Pizza rated", map[string]interface{}{
		"rating_id": entry.ID,
		"user_id":   userID,
		"pizza_id":  pizzaID,
		"rating":    rating,
	})
	s.notify.publish(events.New(events.RatingCreated, events.PizzaKey(pizzaID), events.RatingCreatedPayload{
		RatingID: entry.ID,
		UserID:   userID,
		PizzaID:  pizzaID,
		Rating:   rating,
	}))
	return entry, nil
}

func (s *ratingService) ListRatings(pizzaID *uint) ([]model.Rating, error) {
	return s.ratingRepo.FindAll(pizzaID)
}
