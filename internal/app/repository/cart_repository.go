package repository

import (
	"errors"
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrCartGone is returned when a line is added to a cart that was purged meanwhile.
var ErrCartGone = errors.New("cart no longer exists")

type CartRepository interface {
	FindOrCreateByUserID(userID uint) (*model.Cart, error)
	FindByUserIDWithItems(userID uint) (*model.Cart, error)
	FindItem(cartID, pizzaID uint) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	IncrementItemQuantity(itemID uint, delta int) error
	DeleteItemsByCartID(cartID uint) error
	DeleteEmptyCartsBefore(cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

// touch marks the cart as modified. The stale cart purge keys on updated_at.
func (r *cartRepository) touch(cartID uint) (int64, error) {
	result := r.db.Model(&model.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", time.Now())
	return result.RowsAffected, result.Error
}

func (r *cartRepository) FindOrCreateByUserID(userID uint) (*model.Cart, error) {
	logger.Debug("Finding or creating cart in database", map[string]interface{}{
		"user_id": userID,
	})

	cart := model.Cart{UserID: userID}
	if err := r.db.Where(model.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		logger.Error("Failed to find or create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart resolved in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

func (r *cartRepository) FindByUserIDWithItems(userID uint) (*model.Cart, error) {
	logger.Debug("Finding cart with items in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id")
		}).
		Preload("Items.Pizza").
		First(&cart).Error
	if err != nil {
		logger.Error("Failed to find cart with items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart with items found in database", map[string]interface{}{
		"cart_id": cart.ID,
		"count":   len(cart.Items),
	})
	return &cart, nil
}

func (r *cartRepository) FindItem(cartID, pizzaID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND pizza_id = ?", cartID, pizzaID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":  item.CartID,
		"pizza_id": item.PizzaID,
		"quantity": item.Quantity,
	})

	// touching first locks the cart row, so a concurrent purge cannot remove it before the insert
	touched, err := r.touch(item.CartID)
	if err != nil {
		logger.Error("Failed to touch cart in database", err, map[string]interface{}{
			"cart_id": item.CartID,
		})
		return err
	}
	if touched == 0 {
		return ErrCartGone
	}

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":  item.CartID,
			"pizza_id": item.PizzaID,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
	})
	return nil
}

// IncrementItemQuantity adds delta in a single UPDATE so concurrent adds are not lost.
func (r *cartRepository) IncrementItemQuantity(itemID uint, delta int) error {
	logger.Debug("Incrementing cart item quantity in database", map[string]interface{}{
		"cart_item_id": itemID,
		"delta":        delta,
	})

	err := r.db.Model(&model.CartItem{}).Where("id = ?", itemID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
	if err != nil {
		logger.Error("Failed to increment cart item quantity in database", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}

	err = r.db.Model(&model.Cart{}).
		Where("id = ?", r.db.Model(&model.CartItem{}).Select("cart_id").Where("id = ?", itemID)).
		UpdateColumn("updated_at", time.Now()).Error
	if err != nil {
		logger.Error("Failed to touch cart in database", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByCartID(cartID uint) error {
	logger.Debug("Deleting cart items from database", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items from database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	if _, err := r.touch(cartID); err != nil {
		logger.Error("Failed to touch cart in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}

	logger.Debug("Cart items deleted from database", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}

// DeleteEmptyCartsBefore removes carts with no lines that were last touched before cutoff.
// Adding, merging and clearing lines all count as touching the cart.
func (r *cartRepository) DeleteEmptyCartsBefore(cutoff time.Time) (int64, error) {
	logger.Debug("Deleting stale empty carts from database", map[string]interface{}{
		"cutoff": cutoff,
	})

	result := r.db.
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)").
		Delete(&model.Cart{})
	if result.Error != nil {
		logger.Error("Failed to delete stale empty carts from database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Stale empty carts deleted from database", map[string]interface{}{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
