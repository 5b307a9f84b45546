package model

import (
	baseModel "online_shop/pkg/model"
)

// Product 商品模型
// Price 用十进制字符串存储，避免浮点误差；币种全站统一
type Product struct {
	baseModel.BaseModel
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Price       string `gorm:"type:numeric(12,0);not null" json:"price"`
	Currency    string `gorm:"default:'jpy'" json:"currency"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `gorm:"default:0" json:"stock"`
}
