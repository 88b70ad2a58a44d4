package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/db"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createPizza(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Pizza {
	t.Helper()
	pizza := &model.Pizza{
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Type:        model.PizzaTypeVeg,
		IsAvailable: true,
	}
	require.NoError(t, testDB.Create(pizza).Error)
	return pizza
}

// recordingPublisher collects events published from background goroutines.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) waitFor(t *testing.T, eventType events.Type) events.Event {
	t.Helper()
	var found events.Event
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, e := range p.events {
			if e.Type == eventType {
				found = e
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return found
}

type sentMessage struct {
	userID  uint
	message interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) SendToUser(userID uint, message interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{userID: userID, message: message})
	return nil
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func pickFirst(candidates []uint) *uint {
	if len(candidates) == 0 {
		return nil
	}
	id := candidates[0]
	return &id
}
