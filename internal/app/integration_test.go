package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/config"
	"github.com/ikkim/pizza-delivery-backend/internal/app/controller"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	"github.com/ikkim/pizza-delivery-backend/internal/db"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	"github.com/ikkim/pizza-delivery-backend/internal/router"
	"github.com/ikkim/pizza-delivery-backend/internal/websocket"
	pkgredis "github.com/ikkim/pizza-delivery-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server:   config.ServerConfig{GinMode: gin.TestMode},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Tracking: config.TrackingConfig{BaseURL: "http://localhost:3000"},
	}

	userRepo := repository.NewUserRepository(testDB)
	pizzaRepo := repository.NewPizzaRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	hub := websocket.NewHub()
	publisher := events.NoopPublisher{}
	blacklist := pkgredis.NoopBlacklist{}

	authService := service.NewAuthService(userRepo, blacklist, testSecret, 15*time.Minute, 24*time.Hour)
	pizzaService := service.NewPizzaService(pizzaRepo, nil)
	cartService := service.NewCartService(testDB, cartRepo, pizzaRepo)
	orderService := service.NewOrderService(testDB, orderRepo, cartRepo, userRepo, publisher, hub, cfg.Tracking.BaseURL)
	deliveryService := service.NewDeliveryService(testDB, orderRepo, repository.NewDeliveryCommentRepository(testDB), publisher, hub)
	ratingService := service.NewRatingService(repository.NewRatingRepository(testDB), pizzaRepo, publisher)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewPizzaController(pizzaService),
		controller.NewCartController(cartService),
		controller.NewOrderController(orderService),
		controller.NewDeliveryController(deliveryService),
		controller.NewRatingController(ratingService),
		controller.NewTrackingController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware(testSecret, blacklist),
		cfg,
	)

	return &TestServer{Router: r.Setup(), DB: testDB}
}

func (ts *TestServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) registerAndLogin(t *testing.T, username, role string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	return tokens.Access
}

func (ts *TestServer) createPizza(t *testing.T, adminToken, name, price string) model.Pizza {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/pizzas", adminToken, map[string]string{
		"name":  name,
		"price": price,
		"type":  "veg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pizza model.Pizza
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pizza))
	return pizza
}

func TestCompleteOrderJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Register accounts")
	admin := ts.registerAndLogin(t, "boss", "admin")
	customer := ts.registerAndLogin(t, "alice", "customer")
	rider := ts.registerAndLogin(t, "rider", "delivery_partner")

	t.Log("Step 2: Admin builds the menu")
	margherita := ts.createPizza(t, admin, "Margherita", "250.00")
	farmhouse := ts.createPizza(t, admin, "Farmhouse", "300.00")

	w := ts.do(t, http.MethodPost, "/api/pizzas", customer, map[string]string{"name": "Nope", "price": "1", "type": "veg"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	t.Log("Step 3: Customer fills the cart")
	w = ts.do(t, http.MethodPost, "/api/cart", customer, map[string]interface{}{"pizza_id": margherita.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, "/api/cart", customer, map[string]interface{}{"pizza_id": margherita.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, http.MethodPost, "/api/cart", customer, map[string]interface{}{"pizza_id": farmhouse.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Log("Step 4: Checkout")
	w = ts.do(t, http.MethodPost, "/api/checkout", customer, map[string]string{"payment_method": "online"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.True(t, decimal.RequireFromString("800.00").Equal(order.TotalPrice), "total %s", order.TotalPrice)
	assert.Len(t, order.Items, 2)
	require.NotNil(t, order.DeliveryPartnerID)

	w = ts.do(t, http.MethodGet, "/api/cart", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart service.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)

	w = ts.do(t, http.MethodPost, "/api/checkout", customer, map[string]string{"payment_method": "online"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "second checkout hits the empty cart")

	t.Log("Step 5: Rider delivers")
	deliveryPath := fmt.Sprintf("/api/delivery/%d", order.ID)
	w = ts.do(t, http.MethodPost, deliveryPath, customer, map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusForbidden, w.Code, "customers cannot update deliveries")

	w = ts.do(t, http.MethodPost, deliveryPath, rider, map[string]string{"status": "out_for_delivery", "comment": "on my way"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/update-status", order.ID), rider, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, model.OrderStatusDelivered, order.Status)
	assert.Equal(t, "on my way", order.DeliveryComment)

	t.Log("Step 6: Customer rates the pizza")
	w = ts.do(t, http.MethodPost, "/api/rate-pizza", customer, map[string]interface{}{"pizza_id": margherita.ID, "rating": 5, "comment": "perfect"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, "/api/rate-pizza", customer, map[string]interface{}{"pizza_id": margherita.ID, "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/rate-pizza", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ratings []model.Rating
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ratings))
	assert.Len(t, ratings, 1)
}

func TestUnauthenticatedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/pizzas", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/cart", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/checkout", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/me", "garbage", nil).Code)
}
