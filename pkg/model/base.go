package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 基础模型，替代 gorm.Model
// 主键使用自增 bigint：订单号要作为数字字符串传给支付网关的 metadata
type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}
