package provider

import (
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/cache"
	"github.com/mauphunmp-boop/ai-affiliate/internal/config"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/queue"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/service"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CampaignRepo     repository.CampaignRepository
	OfferRepo        repository.OfferRepository
	PromotionRepo    repository.PromotionRepository
	PolicyRepo       repository.CommissionPolicyRepository
	PriceHistoryRepo repository.PriceHistoryRepository
	ApiConfigRepo    repository.ApiConfigRepository
	LinkRepo         repository.AffiliateLinkRepository
	TemplateRepo     repository.AffiliateTemplateRepository

	// Upstream
	UpstreamClient *upstream.Client

	// Services
	Resolver         *service.Resolver
	IngestPolicyServ *service.IngestPolicyService
	IngestService    *service.IngestService
	LinkcheckService *service.LinkcheckService
	CatalogService   *service.CatalogService
	LinkService      *service.LinkService
	ConvertService   *service.ConvertService
	ShortlinkService *service.ShortlinkService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initUpstream()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PolicyRepo = repository.NewCommissionPolicyRepository(db)
	c.PriceHistoryRepo = repository.NewPriceHistoryRepository(db)
	c.ApiConfigRepo = repository.NewApiConfigRepository(db)
	c.LinkRepo = repository.NewAffiliateLinkRepository(db)
	c.TemplateRepo = repository.NewAffiliateTemplateRepository(db)
}

func (c *Container) initUpstream() {
	sink := upstream.NewSink(c.Config.Log.ToSinkOptions())
	creds := service.NewConfigCredentialSource(c.ApiConfigRepo)
	c.UpstreamClient = upstream.NewClient(creds, sink, upstream.ClientOptions{
		ConnectTimeout: time.Duration(c.Config.Upstream.ConnectTimeoutSeconds) * time.Second,
		ReadTimeout:    time.Duration(c.Config.Upstream.ReadTimeoutSeconds) * time.Second,
	})
}

func (c *Container) initServices() {
	c.Resolver = service.NewResolver()
	c.IngestPolicyServ = service.NewIngestPolicyService(c.ApiConfigRepo)

	c.LinkcheckService = service.NewLinkcheckService(c.OfferRepo, c.IngestPolicyServ, service.LinkcheckOptions{
		Concurrency: c.Config.Linkcheck.Concurrency,
		Timeout:     time.Duration(c.Config.Linkcheck.TimeoutSeconds) * time.Second,
	})

	fetcherOpt := upstream.FetcherOptions{
		LimitPerPage:    c.Config.Upstream.LimitPerPage,
		MaxPages:        c.Config.Upstream.MaxPages,
		WindowPages:     c.Config.Upstream.WindowPages,
		PageConcurrency: c.Config.Upstream.PageConcurrency,
	}
	cacheTTL := time.Duration(c.Config.Upstream.CampaignCacheSeconds) * time.Second
	c.IngestService = service.NewIngestService(
		c.UpstreamClient,
		fetcherOpt,
		c.Resolver,
		c.CampaignRepo,
		c.OfferRepo,
		c.PromotionRepo,
		c.PolicyRepo,
		c.PriceHistoryRepo,
		c.IngestPolicyServ,
		c.LinkcheckService,
		cacheTTL,
	)

	c.CatalogService = service.NewCatalogService(
		c.CampaignRepo, c.OfferRepo, c.PromotionRepo, c.PolicyRepo, c.PriceHistoryRepo)
	c.LinkService = service.NewLinkService(c.LinkRepo, c.ApiConfigRepo, c.TemplateRepo)
	c.ConvertService = service.NewConvertService(c.TemplateRepo, c.Resolver, "")
	c.ShortlinkService = service.NewShortlinkService(
		c.Config.Affiliate.Secret,
		time.Duration(c.Config.Affiliate.ShortlinkTTLSeconds)*time.Second)
}
