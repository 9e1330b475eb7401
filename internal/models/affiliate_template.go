package models

import (
	"time"
)

// AffiliateTemplate 深链模板表（按联盟网络 + 平台选择模板）
type AffiliateTemplate struct {
	ID            uint      `gorm:"primarykey" json:"id"`                       // 主键
	Network       string    `gorm:"type:varchar(64);not null;index" json:"network"` // 联盟网络（accesstrade/...）
	Platform      string    `gorm:"type:varchar(64);index" json:"platform"`     // 平台（shopee/lazada/tiki）
	Template      string    `gorm:"type:varchar(2000);not null" json:"template"` // 模板串，含 {target} 占位符
	DefaultParams JSON      `gorm:"type:json" json:"default_params"`            // 默认追踪参数
	Enabled       bool      `gorm:"default:true;index" json:"enabled"`          // 是否启用
	CreatedAt     time.Time `json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (AffiliateTemplate) TableName() string {
	return "affiliate_templates"
}
