package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPizzaNotFound   = errors.New("pizza not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type CartItemView struct {
	ID        uint            `json:"id"`
	PizzaID   uint            `json:"pizza_id"`
	PizzaName string          `json:"pizza_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Items     []CartItemView  `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func newCartView(cart *model.Cart) *CartView {
	view := &CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(cart.Items)),
		ItemCount: len(cart.Items),
		Total:     cart.Total(),
	}
	for _, item := range cart.Items {
		view.Items = append(view.Items, CartItemView{
			ID:        item.ID,
			PizzaID:   item.PizzaID,
			PizzaName: item.Pizza.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Pizza.Price,
			LineTotal: item.LineTotal(),
		})
	}
	return view
}

type CartService interface {
	GetOrCreateCart(userID uint) (*model.Cart, error)
	AddItem(ctx context.Context, userID, pizzaID uint, quantity int) (*model.CartItem, error)
	ViewCart(userID uint) (*CartView, error)
	ClearCart(userID uint) error
	PurgeStaleCarts(retention time.Duration) (int64, error)
}

type cartService struct {
	db        *gorm.DB
	cartRepo  repository.CartRepository
	pizzaRepo repository.PizzaRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	pizzaRepo repository.PizzaRepository,
) CartService {
	return &cartService{
		db:        db,
		cartRepo:  cartRepo,
		pizzaRepo: pizzaRepo,
	}
}

func (s *cartService) GetOrCreateCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindOrCreateByUserID(userID)
	if err != nil {
		logger.Error("Failed to resolve user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cart, nil
}

// AddItem merges into an existing line for the same pizza instead of adding a second one.
func (s *cartService) AddItem(ctx context.Context, userID, pizzaID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":  userID,
		"pizza_id": pizzaID,
		"quantity": quantity,
	})

	if quantity < 1 {
		logger.Warn("Cannot add to cart: invalid quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	var line *model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		if _, err := s.pizzaRepo.WithTx(tx).FindByID(pizzaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPizzaNotFound
			}
			return err
		}

		cart, err := carts.FindOrCreateByUserID(userID)
		if err != nil {
			return err
		}

		existing, err := carts.FindItem(cart.ID, pizzaID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = &model.CartItem{CartID: cart.ID, PizzaID: pizzaID, Quantity: quantity}
			err = carts.CreateItem(line)
			if !errors.Is(err, repository.ErrCartGone) {
				return err
			}
			// purged between lookup and insert; start a fresh cart
			if cart, err = carts.FindOrCreateByUserID(userID); err != nil {
				return err
			}
			line = &model.CartItem{CartID: cart.ID, PizzaID: pizzaID, Quantity: quantity}
			return carts.CreateItem(line)
		case err != nil:
			return err
		}

		if err := carts.IncrementItemQuantity(existing.ID, quantity); err != nil {
			return err
		}
		line, err = carts.FindItem(cart.ID, pizzaID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPizzaNotFound) {
			logger.Warn("Cannot add to cart: pizza not found", map[string]interface{}{
				"user_id":  userID,
				"pizza_id": pizzaID,
			})
		} else {
			logger.Error("Failed to add item to cart", err, map[string]interface{}{
				"user_id":  userID,
				"pizza_id": pizzaID,
			})
		}
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": line.ID,
		"quantity":     line.Quantity,
	})
	return line, nil
}

func (s *cartService) ViewCart(userID uint) (*CartView, error) {
	if _, err := s.GetOrCreateCart(userID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByUserIDWithItems(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	view := newCartView(cart)
	logger.Debug("User cart fetched", map[string]interface{}{
		"user_id": userID,
		"count":   view.ItemCount,
		"total":   view.Total.String(),
	})
	return view, nil
}

func (s *cartService) ClearCart(userID uint) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteItemsByCartID(cart.ID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// PurgeStaleCarts deletes carts that have had no lines for longer than retention.
func (s *cartService) PurgeStaleCarts(retention time.Duration) (int64, error) {
	return s.cartRepo.DeleteEmptyCartsBefore(time.Now().Add(-retention))
}
