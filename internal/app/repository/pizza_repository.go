package repository

import (
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"gorm.io/gorm"
)

type PizzaFilter struct {
	Type        *model.PizzaType
	IsAvailable *bool
}

type PizzaRepository interface {
	Create(pizza *model.Pizza) error
	BulkCreate(pizzas []model.Pizza, batchSize int) error
	FindByID(id uint) (*model.Pizza, error)
	FindAll(filter PizzaFilter) ([]model.Pizza, error)
	Update(pizza *model.Pizza) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) PizzaRepository
}

type pizzaRepository struct {
	db *gorm.DB
}

func NewPizzaRepository(db *gorm.DB) PizzaRepository {
	return &pizzaRepository{db: db}
}

func (r *pizzaRepository) WithTx(tx *gorm.DB) PizzaRepository {
	return &pizzaRepository{db: tx}
}

func (r *pizzaRepository) Create(pizza *model.Pizza) error {
	logger.Debug("Creating pizza in database", map[string]interface{}{
		"name":  pizza.Name,
		"price": pizza.Price.String(),
		"type":  pizza.Type,
	})

	if err := r.db.Create(pizza).Error; err != nil {
		logger.Error("Failed to create pizza in database", err, map[string]interface{}{
			"name": pizza.Name,
		})
		return err
	}

	logger.Debug("Pizza created in database", map[string]interface{}{
		"pizza_id": pizza.ID,
		"name":     pizza.Name,
	})
	return nil
}

func (r *pizzaRepository) BulkCreate(pizzas []model.Pizza, batchSize int) error {
	logger.Debug("Bulk creating pizzas in database", map[string]interface{}{
		"count":      len(pizzas),
		"batch_size": batchSize,
	})

	if len(pizzas) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(pizzas, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create pizzas in database", err, map[string]interface{}{
			"count": len(pizzas),
		})
		return err
	}

	logger.Info("Pizzas bulk created in database", map[string]interface{}{
		"count": len(pizzas),
	})
	return nil
}

func (r *pizzaRepository) FindByID(id uint) (*model.Pizza, error) {
	logger.Debug("Finding pizza by ID in database", map[string]interface{}{
		"pizza_id": id,
	})

	var pizza model.Pizza
	if err := r.db.First(&pizza, id).Error; err != nil {
		logger.Error("Failed to find pizza by ID in database", err, map[string]interface{}{
			"pizza_id": id,
		})
		return nil, err
	}
	return &pizza, nil
}

func (r *pizzaRepository) FindAll(filter PizzaFilter) ([]model.Pizza, error) {
	logger.Debug("Finding pizzas in database", map[string]interface{}{
		"type":         filter.Type,
		"is_available": filter.IsAvailable,
	})

	query := r.db.Model(&model.Pizza{})
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsAvailable != nil {
		query = query.Where("is_available = ?", *filter.IsAvailable)
	}

	var pizzas []model.Pizza
	if err := query.Order("id").Find(&pizzas).Error; err != nil {
		logger.Error("Failed to find pizzas in database", err)
		return nil, err
	}

	logger.Debug("Pizzas found in database", map[string]interface{}{
		"count": len(pizzas),
	})
	return pizzas, nil
}

func (r *pizzaRepository) Update(pizza *model.Pizza) error {
	logger.Debug("Updating pizza in database", map[string]interface{}{
		"pizza_id": pizza.ID,
	})

	if err := r.db.Save(pizza).Error; err != nil {
		logger.Error("Failed to update pizza in database", err, map[string]interface{}{
			"pizza_id": pizza.ID,
		})
		return err
	}

	logger.Debug("Pizza updated in database", map[string]interface{}{
		"pizza_id": pizza.ID,
	})
	return nil
}

// Delete removes the pizza and every row referencing it in one transaction.
func (r *pizzaRepository) Delete(id uint) error {
	logger.Debug("Deleting pizza from database", map[string]interface{}{
		"pizza_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&model.CartItem{}, &model.OrderItem{}, &model.Rating{}} {
			if err := tx.Where("pizza_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&model.Pizza{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete pizza from database", err, map[string]interface{}{
			"pizza_id": id,
		})
		return err
	}

	logger.Debug("Pizza deleted from database", map[string]interface{}{
		"pizza_id": id,
	})
	return nil
}
