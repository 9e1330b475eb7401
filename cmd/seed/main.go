package main

import (
	"os"

	"github.com/mauphunmp-boop/ai-affiliate/internal/config"
	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 上游接入配置（密钥从环境变量注入，避免入库明文示例）
	apiConfigs := []models.ApiConfig{
		{
			Name:    constants.ConfigNameAccesstrade,
			BaseURL: envOr("AT_BASE_URL", "https://api.accesstrade.vn/v1"),
			ApiKey:  os.Getenv("AT_API_KEY"),
		},
		{
			Name:  constants.ConfigNameIngestPolicy,
			Model: "only_with_commission=false;check_urls=false;linkcheck_cursor=0;linkcheck_mod=10;linkcheck_limit=0",
		},
	}
	for _, ac := range apiConfigs {
		var existing models.ApiConfig
		if err := models.DB.Where("name = ?", ac.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&ac).Error; err != nil {
				stdLog.Printf("Failed to create api config %s: %v", ac.Name, err)
			} else {
				stdLog.Printf("Created api config: %s", ac.Name)
			}
		} else {
			stdLog.Printf("Api config already exists: %s", ac.Name)
		}
	}

	// 默认深链模板（{target} 为落地页占位符）
	templates := []models.AffiliateTemplate{
		{
			Network:  "accesstrade",
			Platform: "shopee",
			Template: "https://go.isclix.com/deep_link/4348611490802528006?url={target}",
			DefaultParams: models.JSON(map[string]interface{}{
				"utm_source": "ai-affiliate",
			}),
			Enabled: true,
		},
		{
			Network:  "accesstrade",
			Platform: "lazada",
			Template: "https://go.isclix.com/deep_link/5168612182012275723?url={target}",
			DefaultParams: models.JSON(map[string]interface{}{
				"utm_source": "ai-affiliate",
			}),
			Enabled: true,
		},
		{
			Network:  "accesstrade",
			Platform: "tiki",
			Template: "https://go.isclix.com/deep_link/4706151609002387910?url={target}",
			DefaultParams: models.JSON(map[string]interface{}{
				"utm_source": "ai-affiliate",
			}),
			Enabled: true,
		},
	}
	for _, tpl := range templates {
		var existing models.AffiliateTemplate
		if err := models.DB.Where("network = ? AND platform = ?", tpl.Network, tpl.Platform).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tpl).Error; err != nil {
				stdLog.Printf("Failed to create template %s/%s: %v", tpl.Network, tpl.Platform, err)
			} else {
				stdLog.Printf("Created template: %s/%s", tpl.Network, tpl.Platform)
			}
		} else {
			stdLog.Printf("Template already exists: %s/%s", tpl.Network, tpl.Platform)
		}
	}

	stdLog.Printf("Seed completed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
