package repository

import (
	"testing"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/db"
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

func createPizza(t *testing.T, testDB *gorm.DB, name string, price int64, pizzaType model.PizzaType) *model.Pizza {
	t.Helper()
	pizza := &model.Pizza{
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Type:        pizzaType,
		IsAvailable: true,
	}
	require.NoError(t, testDB.Create(pizza).Error)
	return pizza
}
