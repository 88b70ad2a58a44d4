package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/storage"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidPizzaName  = errors.New("pizza name is required")
	ErrInvalidPrice      = errors.New("price must be greater than zero, below 1000000 and have at most two decimal places")
	ErrInvalidPizzaType  = errors.New("pizza type must be veg or non-veg")
	ErrUploadUnavailable = errors.New("image uploads are not configured")
)

// Pizza.Price is a decimal(8,2) column.
var maxPizzaPrice = decimal.NewFromInt(1_000_000)

type PizzaListOptions struct {
	Type        *model.PizzaType
	IsAvailable *bool
}

type PizzaInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Type        model.PizzaType
	IsAvailable *bool
	ImageURL    string
}

// PizzaUpdate carries only the fields the caller wants to change.
type PizzaUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Type        *model.PizzaType
	IsAvailable *bool
	ImageURL    *string
}

type PizzaService interface {
	ListPizzas(opts PizzaListOptions) ([]model.Pizza, error)
	GetPizza(id uint) (*model.Pizza, error)
	CreatePizza(input PizzaInput) (*model.Pizza, error)
	UpdatePizza(id uint, update PizzaUpdate) (*model.Pizza, error)
	DeletePizza(id uint) error
	CreateImageUploadURL(ctx context.Context, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type pizzaService struct {
	pizzaRepo repository.PizzaRepository
	images    storage.ImageStorage
}

// NewPizzaService accepts a nil images store; upload URLs then fail with ErrUploadUnavailable.
func NewPizzaService(pizzaRepo repository.PizzaRepository, images storage.ImageStorage) PizzaService {
	return &pizzaService{
		pizzaRepo: pizzaRepo,
		images:    images,
	}
}

func (s *pizzaService) ListPizzas(opts PizzaListOptions) ([]model.Pizza, error) {
	logger.Debug("Listing pizzas", map[string]interface{}{
		"type":         opts.Type,
		"is_available": opts.IsAvailable,
	})

	if opts.Type != nil && !opts.Type.Valid() {
		return nil, ErrInvalidPizzaType
	}

	pizzas, err := s.pizzaRepo.FindAll(repository.PizzaFilter{
		Type:        opts.Type,
		IsAvailable: opts.IsAvailable,
	})
	if err != nil {
		logger.Error("Failed to list pizzas", err)
		return nil, err
	}
	return pizzas, nil
}

func (s *pizzaService) GetPizza(id uint) (*model.Pizza, error) {
	pizza, err := s.pizzaRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Pizza not found", map[string]interface{}{
				"pizza_id": id,
			})
			return nil, ErrPizzaNotFound
		}
		logger.Error("Failed to fetch pizza", err, map[string]interface{}{
			"pizza_id": id,
		})
		return nil, err
	}
	return pizza, nil
}

func (s *pizzaService) CreatePizza(input PizzaInput) (*model.Pizza, error) {
	pizza := &model.Pizza{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Type:        input.Type,
		IsAvailable: true,
		ImageURL:    input.ImageURL,
	}
	if input.IsAvailable != nil {
		pizza.IsAvailable = *input.IsAvailable
	}
	if err := validatePizza(pizza); err != nil {
		return nil, err
	}

	if err := s.pizzaRepo.Create(pizza); err != nil {
		logger.Error("Failed to create pizza", err, map[string]interface{}{
			"name": pizza.Name,
		})
		return nil, err
	}

	logger.Info("Pizza created", map[string]interface{}{
		"pizza_id": pizza.ID,
		"name":     pizza.Name,
		"price":    pizza.Price.String(),
	})
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(id uint, update PizzaUpdate) (*model.Pizza, error) {
	pizza, err := s.GetPizza(id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		pizza.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		pizza.Description = *update.Description
	}
	if update.Price != nil {
		pizza.Price = *update.Price
	}
	if update.Type != nil {
		pizza.Type = *update.Type
	}
	if update.IsAvailable != nil {
		pizza.IsAvailable = *update.IsAvailable
	}
	if update.ImageURL != nil {
		pizza.ImageURL = *update.ImageURL
	}
	if err := validatePizza(pizza); err != nil {
		return nil, err
	}

	if err := s.pizzaRepo.Update(pizza); err != nil {
		logger.Error("Failed to update pizza", err, map[string]interface{}{
			"pizza_id": id,
		})
		return nil, err
	}

	logger.Info("Pizza updated", map[string]interface{}{
		"pizza_id": id,
	})
	return pizza, nil
}

// DeletePizza also removes the pizza's cart lines, order lines and ratings.
func (s *pizzaService) DeletePizza(id uint) error {
	if err := s.pizzaRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPizzaNotFound
		}
		return err
	}

	logger.Info("Pizza deleted", map[string]interface{}{
		"pizza_id": id,
	})
	return nil
}

func (s *pizzaService) CreateImageUploadURL(ctx context.Context, filename, contentType string) (*storage.PresignedURLResponse, error) {
	if s.images == nil {
		return nil, ErrUploadUnavailable
	}
	if err := storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		return nil, err
	}

	upload, err := s.images.GeneratePresignedURL(ctx, filename, contentType, storage.PizzaImageFolder)
	if err != nil {
		logger.Error("Failed to presign pizza image upload", err, map[string]interface{}{
			"filename": filename,
		})
		return nil, err
	}
	return upload, nil
}

func validatePizza(pizza *model.Pizza) error {
	if pizza.Name == "" {
		return ErrInvalidPizzaName
	}
	price := pizza.Price
	if !price.IsPositive() || price.GreaterThanOrEqual(maxPizzaPrice) || !price.Equal(price.Round(2)) {
		return ErrInvalidPrice
	}
	if !pizza.Type.Valid() {
		return ErrInvalidPizzaType
	}
	return nil
}
