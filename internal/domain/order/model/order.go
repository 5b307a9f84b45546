package model

import (
	baseModel "online_shop/pkg/model"
)

// Order 订单
// TotalAmount 是下单时刻按商品现价算的税前快照（十进制字符串），之后不再重算
// 实际扣款在支付网关侧按行项目加 10% 税，两者故意不一致
type Order struct {
	baseModel.BaseModel
	UserID                uint    `gorm:"index;not null" json:"userId"`
	TotalAmount           string  `gorm:"type:numeric(12,0);not null" json:"totalAmount"`
	Currency              string  `gorm:"default:'jpy'" json:"currency"`
	Status                string  `gorm:"default:'pending'" json:"status"` // pending, paid, failed
	ShippingAddress       *string `json:"shippingAddress,omitempty"`
	StripeSessionID       *string `gorm:"index" json:"stripeSessionId,omitempty"`
	StripePaymentIntentID *string `json:"stripePaymentIntentId,omitempty"`
}

// OrderItem 订单行，下单时的价格快照，和商品现价解耦
type OrderItem struct {
	baseModel.BaseModel
	OrderID   uint   `gorm:"index;not null" json:"orderId"`
	ProductID uint   `gorm:"not null" json:"productId"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	Price     string `gorm:"type:numeric(12,0);not null" json:"price"`
	Currency  string `gorm:"default:'jpy'" json:"currency"`
}

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)
