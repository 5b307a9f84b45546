package model

import (
	baseModel "online_shop/pkg/model"
)

// Cart 购物车
// 每个用户最多一个 active 购物车（按查询约束，不是数据库约束）
// 支付成功后由结算服务置为 completed
type Cart struct {
	baseModel.BaseModel
	UserID uint   `gorm:"index;not null" json:"userId"`
	Status string `gorm:"default:'active'" json:"status"` // active, completed
}

// CartItem 购物车行
// (cart_id, product_id) 唯一，重复加购走数量累加
type CartItem struct {
	baseModel.BaseModel
	CartID    uint `gorm:"uniqueIndex:idx_cart_product;not null" json:"cartId"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_product;not null" json:"productId"`
	Quantity  int  `gorm:"not null" json:"quantity"`
}

// CartItemDetail 购物车行 + 商品快照（结算和购物车页共用）
type CartItemDetail struct {
	ItemID      uint   `json:"itemId"`
	ProductID   uint   `json:"productId"`
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `json:"stock"`
}

const (
	CartStatusActive    = "active"
	CartStatusCompleted = "completed"
)
