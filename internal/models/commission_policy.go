package models

import (
	"time"
)

// CommissionPolicy 佣金政策表（近似唯一键：campaign_id + reward_type + target_month）
type CommissionPolicy struct {
	ID          uint      `gorm:"primarykey" json:"id"`                      // 主键
	CampaignID  string    `gorm:"type:varchar(64);index" json:"campaign_id"` // 所属活动ID
	RewardType  string    `gorm:"type:varchar(64)" json:"reward_type"`       // 奖励类型
	SalesRatio  *Money    `gorm:"type:decimal(20,2)" json:"sales_ratio"`     // 比例佣金（可空）
	SalesPrice  *Money    `gorm:"type:decimal(20,2)" json:"sales_price"`     // 固定佣金（可空）
	TargetMonth string    `gorm:"type:varchar(16)" json:"target_month"`      // 生效月份
	CreatedAt   time.Time `json:"created_at"`                                // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (CommissionPolicy) TableName() string {
	return "commission_policies"
}
