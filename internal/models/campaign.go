package models

import (
	"time"
)

// Campaign 联盟活动表（上游发放的 campaign_id 为自然键）
type Campaign struct {
	ID                     uint      `gorm:"primarykey" json:"id"`                                // 主键
	CampaignID             string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"campaign_id"` // 上游活动ID（自然键）
	Merchant               string    `gorm:"type:varchar(128);index" json:"merchant"`             // 商家标识
	Name                   string    `gorm:"type:varchar(255)" json:"name"`                       // 活动名称
	Description            string    `gorm:"type:text" json:"description"`                        // 活动描述
	Status                 string    `gorm:"type:varchar(32);index" json:"status"`                // 活动状态（running/paused/...）
	Approval               string    `gorm:"type:varchar(32)" json:"approval"`                    // 活动审核方式（区别于发布者注册状态）
	StartTime              string    `gorm:"type:varchar(64)" json:"start_time"`                  // 开始时间（上游原样字符串）
	EndTime                string    `gorm:"type:varchar(64)" json:"end_time"`                    // 结束时间（上游原样字符串）
	UserRegistrationStatus string    `gorm:"type:varchar(32);index" json:"user_registration_status"` // 发布者注册状态（NOT_REGISTERED/PENDING/APPROVED）
	CreatedAt              time.Time `json:"created_at"`                                          // 创建时间
	UpdatedAt              time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

// IsEligible 活动是否可产生有效佣金（running 且 APPROVED）
func (c *Campaign) IsEligible() bool {
	return c.Status == "running" && c.UserRegistrationStatus == "APPROVED"
}
