package db

import (
	"fmt"

	"github.com/ikkim/pizza-delivery-backend/config"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Pizza{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.DeliveryComment{},
		&model.Rating{},
	}
}

func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap admin and a starter menu. Both steps are no-ops
// when their data already exists.
func Seed(cfg *config.BootstrapConfig) error {
	logger.Info("Seeding initial data...")

	if err := SeedAdmin(DB, cfg); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}
	if err := SeedMenu(DB); err != nil {
		logger.Error("Failed to seed menu", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func SeedAdmin(db *gorm.DB, cfg *config.BootstrapConfig) error {
	if cfg == nil || cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		logger.Debug("No bootstrap admin configured, skipping")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Admin user already exists, skipping...", map[string]interface{}{
			"username": cfg.AdminUsername,
		})
		return nil
	}

	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if admin.Email == "" {
		admin.Email = cfg.AdminUsername + "@localhost"
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Admin user created", map[string]interface{}{
		"user_id":  admin.ID,
		"username": admin.Username,
	})
	return nil
}

func defaultMenu() []model.Pizza {
	return []model.Pizza{
		{Name: "Margherita", Description: "Tomato, mozzarella and basil", Price: decimal.NewFromInt(250), Type: model.PizzaTypeVeg, IsAvailable: true},
		{Name: "Farmhouse", Description: "Onion, capsicum, tomato and mushroom", Price: decimal.NewFromInt(300), Type: model.PizzaTypeVeg, IsAvailable: true},
		{Name: "Pepperoni", Description: "Pepperoni and mozzarella", Price: decimal.NewFromInt(350), Type: model.PizzaTypeNonVeg, IsAvailable: true},
		{Name: "Chicken Tikka", Description: "Tandoori chicken, onion and capsicum", Price: decimal.NewFromInt(380), Type: model.PizzaTypeNonVeg, IsAvailable: true},
	}
}

func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Pizza{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Menu already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	menu := defaultMenu()
	if err := db.Create(&menu).Error; err != nil {
		return err
	}

	logger.Info("Default menu seeded", map[string]interface{}{
		"count": len(menu),
	})
	return nil
}
