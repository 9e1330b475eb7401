package router

import (
	"github.com/mauphunmp-boop/ai-affiliate/internal/config"
	apihandlers "github.com/mauphunmp-boop/ai-affiliate/internal/http/handlers/api"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := apihandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// 签名短链跳转
	r.GET("/r/:token", handler.Redirect)

	apiV1 := r.Group("/api/v1")
	{
		links := apiV1.Group("/links")
		{
			links.GET("", handler.ListLinks)
			links.GET("/:id", handler.GetLink)
			links.POST("", handler.CreateLink)
			links.PUT("/:id", handler.UpdateLink)
			links.DELETE("/:id", handler.DeleteLink)
		}

		configs := apiV1.Group("/configs")
		{
			configs.GET("", handler.ListConfigs)
			configs.GET("/:name", handler.GetConfig)
			configs.POST("", handler.UpsertConfig)
			configs.DELETE("/:name", handler.DeleteConfig)
		}

		templates := apiV1.Group("/templates")
		{
			templates.GET("", handler.ListTemplates)
			templates.POST("", handler.SaveTemplate)
			templates.DELETE("/:id", handler.DeleteTemplate)
		}

		apiV1.POST("/convert", handler.ConvertLink)
		apiV1.POST("/shortlinks", handler.CreateShortlink)

		offers := apiV1.Group("/offers")
		{
			offers.GET("", handler.ListOffers)
			offers.GET("/:id", handler.GetOffer)
			offers.GET("/:id/price-history", handler.GetOfferPriceHistory)
			offers.PUT("/:id", handler.UpdateOffer)
			offers.DELETE("/:id", handler.DeleteOffer)
			offers.DELETE("", handler.DeleteOffersBySource)
		}

		campaigns := apiV1.Group("/campaigns")
		{
			campaigns.GET("", handler.ListCampaigns)
			campaigns.GET("/summary", handler.GetCampaignSummary)
			campaigns.GET("/alerts", handler.GetRegistrationAlerts)
			campaigns.GET("/:campaign_id", handler.GetCampaign)
		}

		apiV1.GET("/promotions", handler.ListPromotions)

		ingest := apiV1.Group("/ingest")
		{
			ingest.POST("/campaigns/sync", handler.SyncCampaigns)
			ingest.POST("/datafeeds/all", handler.IngestDatafeedsAll)
			ingest.POST("/promotions", handler.IngestPromotions)
			ingest.POST("/top-products", handler.IngestTopProducts)
			ingest.POST("/products", handler.IngestProducts)
			ingest.POST("/import", handler.ImportOffers)
			ingest.GET("/policy", handler.GetIngestPolicy)
			ingest.PUT("/policy", handler.SetIngestPolicyFlag)
		}

		maintenance := apiV1.Group("/maintenance")
		{
			maintenance.POST("/normalize-campaigns", handler.NormalizeCampaigns)
			maintenance.POST("/linkcheck/rotate", handler.LinkcheckRotate)
			maintenance.POST("/cleanup-dead", handler.CleanupDeadOffers)
		}
	}

	return r
}
