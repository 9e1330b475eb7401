package models

import (
	"time"
)

// AffiliateLink 手工维护的推广链接表
type AffiliateLink struct {
	ID           uint      `gorm:"primarykey" json:"id"`                     // 主键
	Name         string    `gorm:"type:varchar(255);index" json:"name"`      // 链接名称
	URL          string    `gorm:"type:varchar(2000);not null" json:"url"`   // 原始链接
	AffiliateURL string    `gorm:"type:varchar(2000);not null" json:"affiliate_url"` // 推广链接
	CreatedAt    time.Time `json:"created_at"`                               // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                               // 更新时间
}

// TableName 指定表名
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
