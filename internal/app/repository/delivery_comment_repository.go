package repository

import (
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

type DeliveryCommentRepository interface {
	Create(comment *model.DeliveryComment) error
	FindByOrderID(orderID uint) ([]model.DeliveryComment, error)
	WithTx(tx *gorm.DB) DeliveryCommentRepository
}

type deliveryCommentRepository struct {
	db *gorm.DB
}

func NewDeliveryCommentRepository(db *gorm.DB) DeliveryCommentRepository {
	return &deliveryCommentRepository{db: db}
}

func (r *deliveryCommentRepository) Create(comment *model.DeliveryComment) error {
	logger.Debug("Creating delivery comment in database", map[string]interface{}{
		"order_id":   comment.OrderID,
		"partner_id": comment.PartnerID,
	})

	if err := r.db.Create(comment).Error; err != nil {
		logger.Error("Failed to create delivery comment in database", err, map[string]interface{}{
			"order_id": comment.OrderID,
		})
		return err
	}
	return nil
}

func (r *deliveryCommentRepository) FindByOrderID(orderID uint) ([]model.DeliveryComment, error) {
	var comments []model.DeliveryComment
	if err := r.db.Where("order_id = ?", orderID).Order("id").Find(&comments).Error; err != nil {
		logger.Error("Failed to find delivery comments in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return comments, nil
}

func (r *deliveryCommentRepository) WithTx(tx *gorm.DB) DeliveryCommentRepository {
	return &deliveryCommentRepository{db: tx}
}
