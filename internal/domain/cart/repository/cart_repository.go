package repository

import (
	"errors"

	"online_shop/internal/domain/cart/model"

	"gorm.io/gorm"
)

type CartRepository interface {
	FindActiveByUserID(userID uint) (*model.Cart, error)
	FindOrCreateActive(userID uint) (*model.Cart, error)
	GetItems(cartID uint) ([]model.CartItemDetail, error)
	AddItem(cartID, productID uint, quantity int) error
	UpdateItemQuantity(cartID, productID uint, quantity int) error
	RemoveItem(cartID, productID uint) error
	Clear(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindActiveByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ? AND status = ?", userID, model.CartStatusActive).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOrCreateActive 加购时惰性建车
func (r *cartRepository) FindOrCreateActive(userID uint) (*model.Cart, error) {
	cart, err := r.FindActiveByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{
		UserID: userID,
		Status: model.CartStatusActive,
	}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// GetItems 返回行项目并连表带出商品快照
func (r *cartRepository) GetItems(cartID uint) ([]model.CartItemDetail, error) {
	var items []model.CartItemDetail
	err := r.db.
		Table("cart_items").
		Select(`cart_items.id AS item_id, cart_items.product_id, cart_items.quantity,
			products.name, products.description, products.price, products.currency,
			products.image_url, products.stock`).
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.cart_id = ? AND cart_items.deleted_at IS NULL", cartID).
		Order("cart_items.id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem 已存在同商品则数量累加，否则新建行
func (r *cartRepository) AddItem(cartID, productID uint, quantity int) error {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err == nil {
		return r.db.Model(&item).Update("quantity", item.Quantity+quantity).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}).Error
}

func (r *cartRepository) UpdateItemQuantity(cartID, productID uint, quantity int) error {
	return r.db.Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) RemoveItem(cartID, productID uint) error {
	return r.db.
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{}).Error
}

// Clear 将用户的 active 购物车置为 completed
// 没有 active 购物车时是 no-op（支付成功回调可能重复投递）
func (r *cartRepository) Clear(userID uint) error {
	return r.db.Model(&model.Cart{}).
		Where("user_id = ? AND status = ?", userID, model.CartStatusActive).
		Update("status", model.CartStatusCompleted).Error
}
