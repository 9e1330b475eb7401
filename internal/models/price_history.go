package models

import (
	"time"
)

// PriceHistory 商品价格历史表（价格变动时追加）
type PriceHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                  // 主键
	OfferID    uint      `gorm:"not null;index" json:"offer_id"`        // 所属报价ID
	Price      *Money    `gorm:"type:decimal(20,2)" json:"price"`       // 记录时价格（可空）
	Currency   string    `gorm:"type:varchar(8)" json:"currency"`       // 币种
	RecordedAt time.Time `gorm:"index" json:"recorded_at"`              // 记录时间
}

// TableName 指定表名
func (PriceHistory) TableName() string {
	return "price_histories"
}
