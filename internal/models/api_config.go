package models

import (
	"time"
)

// ApiConfig 外部接入配置表（name 唯一；ingest_policy 行借 model 字段存放策略开关串）
type ApiConfig struct {
	ID        uint      `gorm:"primarykey" json:"id"`                            // 主键
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"` // 配置名（accesstrade/ingest_policy/...）
	BaseURL   string    `gorm:"type:varchar(500)" json:"base_url"`               // 接口地址
	ApiKey    string    `gorm:"type:varchar(255)" json:"api_key"`                // 接口密钥
	Model     string    `gorm:"type:text" json:"model"`                          // 附加参数（策略行为分号分隔的 key=value 串）
	CreatedAt time.Time `json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                      // 更新时间
}

// TableName 指定表名
func (ApiConfig) TableName() string {
	return "api_configs"
}
