package service

import (
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/internal/websocket"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
)

const eventPublishTimeout = 5 * time.Second

// OrderNotifier pushes live updates to connected users. *websocket.Hub implements it.
type OrderNotifier interface {
	SendToUser(userID uint, message interface{}) error
}

// notifier bundles the two best-effort side channels fired after a commit.
type notifier struct {
	publisher events.Publisher
	live      OrderNotifier
}

func (n notifier) publish(event events.Event) {
	events.PublishAsync(n.publisher, event, eventPublishTimeout)
}

func (n notifier) push(userID uint, update websocket.OrderUpdate) {
	if n.live == nil {
		return
	}
	if err := n.live.SendToUser(userID, update); err != nil {
		logger.Warn("Failed to push live order update", map[string]interface{}{
			"user_id":  userID,
			"order_id": update.OrderID,
			"error":    err.Error(),
		})
	}
}
