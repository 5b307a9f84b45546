package repository

import (
	"online_shop/internal/domain/order/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	CreateItems(orderID uint, items []model.OrderItem) error
	// Update 部分更新，updated_at 由 GORM 随每次变更刷新
	Update(id uint, patch map[string]interface{}) error
	GetByID(id uint) (*model.Order, error)
	GetBySessionID(sessionID string) (*model.Order, error)
	GetItems(orderID uint) ([]model.OrderItem, error)
	GetListByUser(userID uint, offset, limit int) ([]model.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) CreateItems(orderID uint, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.Create(&items).Error
}

func (r *orderRepository) Update(id uint, patch map[string]interface{}) error {
	return r.db.Model(&model.Order{}).Where("id = ?", id).Updates(patch).Error
}

func (r *orderRepository) GetByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetBySessionID(sessionID string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Where("stripe_session_id = ?", sessionID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetItems(orderID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) GetListByUser(userID uint, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	if err := r.db.Model(&model.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Order("id desc").Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
