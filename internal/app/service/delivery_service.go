package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/internal/websocket"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatus   = errors.New("invalid delivery status")
	ErrNothingToUpdate = errors.New("status or comment is required")
	ErrEmptyComment    = errors.New("comment is required")
)

type DeliveryService interface {
	UpdateDelivery(ctx context.Context, partnerID, orderID uint, status, comment string) (*model.Order, error)
	AddComment(ctx context.Context, partnerID, orderID uint, comment string) (*model.DeliveryComment, error)
	ListComments(userID, orderID uint) ([]model.DeliveryComment, error)
	ListAssignedOrders(partnerID uint) ([]model.Order, error)
}

type deliveryService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	commentRepo repository.DeliveryCommentRepository
	notify      notifier
}

func NewDeliveryService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	commentRepo repository.DeliveryCommentRepository,
	publisher events.Publisher,
	live OrderNotifier,
) DeliveryService {
	return &deliveryService{
		db:          db,
		orderRepo:   orderRepo,
		commentRepo: commentRepo,
		notify:      notifier{publisher: publisher, live: live},
	}
}

// UpdateDelivery lets the assigned partner set status and/or comment. Empty
// strings mean "leave unchanged". Any state may follow any other.
func (s *deliveryService) UpdateDelivery(ctx context.Context, partnerID, orderID uint, status, comment string) (*model.Order, error) {
	status = strings.TrimSpace(status)
	comment = strings.TrimSpace(comment)

	logger.Info("Updating delivery", map[string]interface{}{
		"partner_id": partnerID,
		"order_id":   orderID,
		"status":     status,
	})

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		found, err := orders.FindAssigned(orderID, partnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if status == "" && comment == "" {
			return ErrNothingToUpdate
		}

		fields := make(map[string]interface{}, 2)
		if status != "" {
			next := model.OrderStatus(status)
			if !next.Valid() {
				return ErrInvalidStatus
			}
			fields["status"] = next
			found.Status = next
		}
		if comment != "" {
			fields["delivery_comment"] = comment
			found.DeliveryComment = comment

			if err := s.commentRepo.WithTx(tx).Create(&model.DeliveryComment{
				OrderID:   orderID,
				PartnerID: partnerID,
				Comment:   comment,
			}); err != nil {
				return err
			}
		}

		if err := orders.UpdateFields(orderID, fields); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		logger.Warn("Delivery update rejected", map[string]interface{}{
			"partner_id": partnerID,
			"order_id":   orderID,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.Info("Delivery updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	s.notify.publish(events.New(events.OrderStatusChanged, events.OrderKey(order.ID), events.OrderStatusPayload{
		OrderID:   order.ID,
		UserID:    order.UserID,
		PartnerID: order.DeliveryPartnerID,
		Status:    string(order.Status),
		Comment:   order.DeliveryComment,
	}))
	s.notify.push(order.UserID, websocket.OrderUpdate{
		Type:    websocket.TypeOrderStatusChanged,
		OrderID: order.ID,
		Status:  string(order.Status),
		Comment: order.DeliveryComment,
	})

	return order, nil
}

// AddComment appends to the order's comment log and mirrors the latest comment on the order.
func (s *deliveryService) AddComment(ctx context.Context, partnerID, orderID uint, comment string) (*model.DeliveryComment, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}

	var entry *model.DeliveryComment
	var buyerID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		order, err := orders.FindAssigned(orderID, partnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		buyerID = order.UserID

		entry = &model.DeliveryComment{OrderID: orderID, PartnerID: partnerID, Comment: comment}
		if err := s.commentRepo.WithTx(tx).Create(entry); err != nil {
			return err
		}
		return orders.UpdateFields(orderID, map[string]interface{}{"delivery_comment": comment})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Delivery comment added", map[string]interface{}{
		"order_id":   orderID,
		"partner_id": partnerID,
		"comment_id": entry.ID,
	})
	s.notify.push(buyerID, websocket.OrderUpdate{
		Type:    websocket.TypeOrderComment,
		OrderID: orderID,
		Comment: comment,
	})
	return entry, nil
}

func (s *deliveryService) ListComments(userID, orderID uint) ([]model.DeliveryComment, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.IsVisibleTo(userID) {
		return nil, ErrOrderNotFound
	}
	return s.commentRepo.FindByOrderID(orderID)
}

func (s *deliveryService) ListAssignedOrders(partnerID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByPartnerID(partnerID)
	if err != nil {
		logger.Error("Failed to fetch assigned orders", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}
	return orders, nil
}
