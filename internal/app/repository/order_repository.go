package repository

import (
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindAssigned(orderID, partnerID uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindByPartnerID(partnerID uint) ([]model.Order, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id")
	}).Preload("Items.Pizza")
}

// Create inserts the order together with its Items.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":     order.UserID,
		"total_price": order.TotalPrice.String(),
		"items":       len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":            order.ID,
		"user_id":             order.UserID,
		"delivery_partner_id": order.DeliveryPartnerID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

// FindAssigned returns gorm.ErrRecordNotFound both when the order is missing
// and when it belongs to another partner.
func (r *orderRepository) FindAssigned(orderID, partnerID uint) (*model.Order, error) {
	logger.Debug("Finding assigned order in database", map[string]interface{}{
		"order_id":   orderID,
		"partner_id": partnerID,
	})

	var order model.Order
	err := r.db.Where("id = ? AND delivery_partner_id = ?", orderID, partnerID).First(&order).Error
	if err != nil {
		logger.Error("Failed to find assigned order in database", err, map[string]interface{}{
			"order_id":   orderID,
			"partner_id": partnerID,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindByPartnerID(partnerID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by delivery partner in database", map[string]interface{}{
		"partner_id": partnerID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("delivery_partner_id = ?", partnerID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by delivery partner in database", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}

	logger.Debug("Orders found by delivery partner in database", map[string]interface{}{
		"partner_id": partnerID,
		"count":      len(orders),
	})
	return orders, nil
}

func (r *orderRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": id,
		"fields":   fields,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update order in database", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": id,
	})
	return nil
}
