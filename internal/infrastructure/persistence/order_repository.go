package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/pattycroche/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order. Orders are written exactly once.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.CustomerOrder) error {
	if order == nil {
		return errors.New("order is nil")
	}
	model := models.CustomerOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.CustomerOrder, error) {
	var model models.CustomerOrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
