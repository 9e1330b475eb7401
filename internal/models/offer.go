package models

import (
	"time"
)

// Offer 商品报价表（自然键为 source + source_id）
type Offer struct {
	ID                     uint      `gorm:"primarykey" json:"id"`                                                 // 主键（巡检分片按 id 取模）
	Source                 string    `gorm:"type:varchar(32);not null;index:idx_offers_source_sid,unique" json:"source"` // 数据来源（accesstrade/excel）
	SourceID               string    `gorm:"type:varchar(190);not null;index:idx_offers_source_sid,unique;index" json:"source_id"` // 来源内唯一ID
	Merchant               string    `gorm:"type:varchar(128);index" json:"merchant"`                              // 商家标识
	Title                  string    `gorm:"type:varchar(500)" json:"title"`                                       // 商品标题
	URL                    string    `gorm:"type:varchar(2000)" json:"url"`                                        // 商品原始链接
	AffiliateURL           *string   `gorm:"type:varchar(2000)" json:"affiliate_url"`                              // 联盟推广链接（可空）
	ImageURL               string    `gorm:"type:varchar(2000)" json:"image_url"`                                  // 商品主图
	Price                  *Money    `gorm:"type:decimal(20,2)" json:"price"`                                      // 价格（可空）
	Currency               string    `gorm:"type:varchar(8)" json:"currency"`                                      // 币种
	CampaignID             string    `gorm:"type:varchar(64);index" json:"campaign_id"`                            // 所属活动ID（软引用，不做外键约束）
	SourceType             string    `gorm:"type:varchar(32);index" json:"source_type"`                            // 入库路径（datafeed/top_products/manual/excel）
	ProductID              string    `gorm:"type:varchar(190)" json:"product_id"`                                  // 上游复合ID的后缀部分
	ApprovalStatus         string    `gorm:"type:varchar(32)" json:"approval_status"`                              // 写入时刻活动注册状态快照
	EligibleCommission     bool      `gorm:"default:false;index" json:"eligible_commission"`                       // 佣金有效（活动 running 且 APPROVED）
	AffiliateLinkAvailable bool      `gorm:"default:false" json:"affiliate_link_available"`                        // 是否有联盟链接
	Extra                  JSON      `gorm:"type:json" json:"extra"`                                               // 扩展载荷（佣金/促销快照等）
	CreatedAt              time.Time `json:"created_at"`                                                           // 创建时间
	UpdatedAt              time.Time `gorm:"index" json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}
