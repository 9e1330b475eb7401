package models

import (
	"time"
)

// Promotion 促销活动表（无硬性唯一约束，按近似键更新）
type Promotion struct {
	ID         uint      `gorm:"primarykey" json:"id"`                      // 主键
	CampaignID string    `gorm:"type:varchar(64);index" json:"campaign_id"` // 所属活动ID（允许为空保留孤儿促销）
	Merchant   string    `gorm:"type:varchar(128);index" json:"merchant"`   // 商家标识
	Name       string    `gorm:"type:varchar(255)" json:"name"`             // 促销名称
	Content    string    `gorm:"type:text" json:"content"`                  // 促销内容
	StartTime  string    `gorm:"type:varchar(64)" json:"start_time"`        // 开始时间（上游原样字符串）
	EndTime    string    `gorm:"type:varchar(64)" json:"end_time"`          // 结束时间（上游原样字符串）
	Coupon     string    `gorm:"type:varchar(255)" json:"coupon"`           // 优惠券码
	Link       string    `gorm:"type:varchar(2000)" json:"link"`            // 促销落地页
	CreatedAt  time.Time `json:"created_at"`                                // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}
