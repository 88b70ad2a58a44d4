package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Pizza) {
	testDB := setupTestDB(t)

	user := createUser(t, testDB, "alice", model.RoleCustomer)
	pizza := createPizza(t, testDB, "Margherita", 250)

	cartService := NewCartService(
		testDB,
		repository.NewCartRepository(testDB),
		repository.NewPizzaRepository(testDB),
	)
	return cartService, testDB, user, pizza
}

func TestCartService_GetOrCreateCart(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	first, err := cartService.GetOrCreateCart(user.ID)
	require.NoError(t, err)
	second, err := cartService.GetOrCreateCart(user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, user.ID, first.UserID)
}

func TestCartService_AddItem_Success(t *testing.T) {
	cartService, _, user, pizza := setupCartServiceTest(t)

	item, err := cartService.AddItem(context.Background(), user.ID, pizza.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, pizza.ID, item.PizzaID)
	assert.Equal(t, 2, item.Quantity)
}

func TestCartService_AddItem_MergesSamePizza(t *testing.T) {
	cartService, testDB, user, pizza := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := cartService.AddItem(ctx, user.ID, pizza.ID, 1)
	require.NoError(t, err)
	item, err := cartService.AddItem(ctx, user.ID, pizza.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	var count int64
	require.NoError(t, testDB.Model(&model.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	cartService, _, user, pizza := setupCartServiceTest(t)

	for _, qty := range []int{0, -3} {
		_, err := cartService.AddItem(context.Background(), user.ID, pizza.ID, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestCartService_AddItem_PizzaNotFound(t *testing.T) {
	cartService, testDB, user, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrPizzaNotFound)

	var count int64
	require.NoError(t, testDB.Model(&model.Cart{}).Count(&count).Error)
	assert.Zero(t, count, "failed add must not leave a cart behind")
}

func TestCartService_ViewCart(t *testing.T) {
	cartService, testDB, user, margherita := setupCartServiceTest(t)
	farmhouse := createPizza(t, testDB, "Farmhouse", 300)
	ctx := context.Background()

	_, err := cartService.AddItem(ctx, user.ID, margherita.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddItem(ctx, user.ID, farmhouse.ID, 1)
	require.NoError(t, err)

	view, err := cartService.ViewCart(user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "Margherita", view.Items[0].PizzaName)
	assert.True(t, decimal.NewFromInt(800).Equal(view.Total), "got %s", view.Total)
}

func TestCartService_ViewCart_Empty(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	view, err := cartService.ViewCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, _, user, pizza := setupCartServiceTest(t)

	// clearing a cart that was never created is fine
	require.NoError(t, cartService.ClearCart(user.ID))

	_, err := cartService.AddItem(context.Background(), user.ID, pizza.ID, 2)
	require.NoError(t, err)
	require.NoError(t, cartService.ClearCart(user.ID))

	view, err := cartService.ViewCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartService_PurgeStaleCarts(t *testing.T) {
	cartService, testDB, user, pizza := setupCartServiceTest(t)
	other := createUser(t, testDB, "bob", model.RoleCustomer)

	_, err := cartService.GetOrCreateCart(user.ID)
	require.NoError(t, err)
	_, err = cartService.AddItem(context.Background(), other.ID, pizza.ID, 1)
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, testDB.Model(&model.Cart{}).Where("1 = 1").Update("updated_at", old).Error)

	removed, err := cartService.PurgeStaleCarts(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed, "only the empty cart is purged")
}

func TestCartService_PurgeSkipsCartEmptiedByCheckout(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, f.db.Model(&model.Cart{}).Where("user_id = ?", f.customer.ID).UpdateColumn("updated_at", old).Error)

	_, err := f.orders.Checkout(context.Background(), f.customer.ID, "cod")
	require.NoError(t, err)

	removed, err := f.carts.PurgeStaleCarts(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	var count int64
	require.NoError(t, f.db.Model(&model.Cart{}).Where("user_id = ?", f.customer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
