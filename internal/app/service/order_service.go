package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/internal/websocket"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMode   = errors.New("invalid payment mode")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// PartnerPicker chooses one delivery partner from the candidates, or nil.
type PartnerPicker func(candidates []uint) *uint

// ParsePaymentMode accepts cod, online and the legacy alias cash.
func ParsePaymentMode(raw string) (model.PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cod", "cash":
		return model.PaymentModeCOD, nil
	case "online":
		return model.PaymentModeOnline, nil
	}
	return "", ErrInvalidPaymentMode
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, paymentMode string) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uint, status string) (*model.Order, error)
	TrackingQRCode(userID, orderID uint) ([]byte, error)
}

type OrderServiceOption func(*orderService)

func WithPartnerPicker(picker PartnerPicker) OrderServiceOption {
	return func(s *orderService) {
		s.pickPartner = picker
	}
}

type orderService struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	userRepo        repository.UserRepository
	notify          notifier
	pickPartner     PartnerPicker
	trackingBaseURL string
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	live OrderNotifier,
	trackingBaseURL string,
	opts ...OrderServiceOption,
) OrderService {
	s := &orderService{
		db:              db,
		orderRepo:       orderRepo,
		cartRepo:        cartRepo,
		userRepo:        userRepo,
		notify:          notifier{publisher: publisher, live: live},
		pickPartner:     util.PickRandom,
		trackingBaseURL: strings.TrimRight(trackingBaseURL, "/"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout turns the caller's cart into an order in a single transaction:
// price the lines, assign a partner, write order and items, empty the cart.
func (s *orderService) Checkout(ctx context.Context, userID uint, paymentMode string) (*model.Order, error) {
	logger.Info("Checkout started", map[string]interface{}{
		"user_id":      userID,
		"payment_mode": paymentMode,
	})

	mode, err := ParsePaymentMode(paymentMode)
	if err != nil {
		logger.Warn("Checkout rejected: invalid payment mode", map[string]interface{}{
			"user_id":      userID,
			"payment_mode": paymentMode,
		})
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		cart, err := carts.FindByUserIDWithItems(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			total = total.Add(line.LineTotal())
			items = append(items, model.OrderItem{
				PizzaID:   line.PizzaID,
				Quantity:  line.Quantity,
				UnitPrice: line.Pizza.Price,
			})
		}

		partners, err := s.userRepo.WithTx(tx).FindIDsByRole(model.RoleDeliveryPartner)
		if err != nil {
			return err
		}

		order = &model.Order{
			UserID:            userID,
			DeliveryPartnerID: s.pickPartner(partners),
			Status:            model.OrderStatusPending,
			TotalPrice:        total,
			PaymentMode:       mode,
			PaymentStatus:     model.PaymentStatusPending,
			Items:             items,
		}
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}

		return carts.DeleteItemsByCartID(cart.ID)
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			logger.Warn("Cannot checkout: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
		} else {
			logger.Error("Checkout failed, transaction rolled back", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":            order.ID,
		"user_id":             userID,
		"total_price":         order.TotalPrice.String(),
		"delivery_partner_id": order.DeliveryPartnerID,
	})

	s.notify.publish(events.New(events.OrderCreated, events.OrderKey(order.ID), events.OrderCreatedPayload{
		OrderID:           order.ID,
		UserID:            order.UserID,
		DeliveryPartnerID: order.DeliveryPartnerID,
		TotalPrice:        order.TotalPrice.StringFixed(2),
		PaymentMode:       string(order.PaymentMode),
		ItemCount:         len(order.Items),
	}))
	if order.DeliveryPartnerID != nil {
		s.notify.push(*order.DeliveryPartnerID, websocket.OrderUpdate{
			Type:    websocket.TypeOrderCreated,
			OrderID: order.ID,
			Status:  string(order.Status),
		})
	}

	// reload so the response carries pizza details on each item
	if full, err := s.orderRepo.FindByID(order.ID); err == nil {
		return full, nil
	}
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// GetOrder hides orders the caller neither bought nor delivers.
func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.IsVisibleTo(userID) {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uint, status string) (*model.Order, error) {
	paymentStatus := model.PaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !paymentStatus.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	err := s.orderRepo.WithTx(s.db.WithContext(ctx)).UpdateFields(orderID, map[string]interface{}{
		"payment_status": paymentStatus,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment status updated", map[string]interface{}{
		"order_id":       orderID,
		"payment_status": paymentStatus,
	})
	s.notify.publish(events.New(events.PaymentUpdated, events.OrderKey(order.ID), events.OrderStatusPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		PartnerID:     order.DeliveryPartnerID,
		PaymentStatus: string(order.PaymentStatus),
	}))
	return order, nil
}

// TrackingQRCode renders the order's public tracking URL as a PNG.
func (s *orderService) TrackingQRCode(userID, orderID uint) ([]byte, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	return util.GenerateQRCodePNG(s.TrackingURL(order.ID), util.DefaultQRCodeSize)
}

func (s *orderService) TrackingURL(orderID uint) string {
	return fmt.Sprintf("%s/orders/%d", s.trackingBaseURL, orderID)
}
