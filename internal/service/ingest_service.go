package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mauphunmp-boop/ai-affiliate/internal/cache"
	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

const cacheKeyActiveCampaigns = "campaigns:active"

// URLChecker 链接存活探测
type URLChecker interface {
	CheckURL(ctx context.Context, url string) bool
}

// IngestService 上游数据入库服务：活动同步、商品流、促销、热销
type IngestService struct {
	client        *upstream.Client
	fetcherOpt    upstream.FetcherOptions
	resolver      *Resolver
	campaignRepo  repository.CampaignRepository
	offerRepo     repository.OfferRepository
	promotionRepo repository.PromotionRepository
	policyRepo    repository.CommissionPolicyRepository
	historyRepo   repository.PriceHistoryRepository
	policyService *IngestPolicyService
	checker       URLChecker
	cacheTTL      time.Duration
}

// NewIngestService 创建入库服务
func NewIngestService(
	client *upstream.Client,
	fetcherOpt upstream.FetcherOptions,
	resolver *Resolver,
	campaignRepo repository.CampaignRepository,
	offerRepo repository.OfferRepository,
	promotionRepo repository.PromotionRepository,
	policyRepo repository.CommissionPolicyRepository,
	historyRepo repository.PriceHistoryRepository,
	policyService *IngestPolicyService,
	checker URLChecker,
	cacheTTL time.Duration,
) *IngestService {
	return &IngestService{
		client:        client,
		fetcherOpt:    fetcherOpt,
		resolver:      resolver,
		campaignRepo:  campaignRepo,
		offerRepo:     offerRepo,
		promotionRepo: promotionRepo,
		policyRepo:    policyRepo,
		historyRepo:   historyRepo,
		policyService: policyService,
		checker:       checker,
		cacheTTL:      cacheTTL,
	}
}

// runClient 为一轮入库生成 run_id 并派生打标客户端
func (s *IngestService) runClient() (*upstream.Client, string) {
	runID := uuid.NewString()
	return s.client.ForRun(runID), runID
}

// mapStatus 上游状态归一："1" -> running，"0" -> paused，其余原样
func mapStatus(v string) string {
	s := strings.TrimSpace(v)
	switch s {
	case "1":
		return constants.CampaignStatusRunning
	case "0":
		return constants.CampaignStatusPaused
	}
	return s
}

// splitApprovalOrUser 拆分上游 approval 字段：
// successful/pending/unregistered 实为发布者注册状态，其余才是活动审核方式。
func splitApprovalOrUser(v string) (approval, userStatus string) {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "":
		return "", ""
	case "successful":
		return "", constants.RegistrationApproved
	case "pending":
		return "", constants.RegistrationPending
	case "unregistered":
		return "", constants.RegistrationNotRegistered
	}
	return strings.TrimSpace(v), ""
}

// approvalSnapshot 把注册状态映射为报价快照取值
func approvalSnapshot(userStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(userStatus)) {
	case constants.RegistrationApproved, constants.RegistrationSuccessful:
		return constants.ApprovalSnapshotSuccessful
	case constants.RegistrationPending:
		return constants.ApprovalSnapshotPending
	case constants.RegistrationNotRegistered:
		return constants.ApprovalSnapshotUnregistered
	}
	return ""
}

// isApprovedStatus 注册状态是否视同已批准
func isApprovedStatus(userStatus string) bool {
	s := strings.ToUpper(strings.TrimSpace(userStatus))
	return s == constants.RegistrationApproved || s == constants.RegistrationSuccessful
}

// activeCampaigns 获取活跃活动映射：优先缓存，其次上游，最后本地库兜底
func (s *IngestService) activeCampaigns(ctx context.Context, client *upstream.Client) map[string]string {
	var cached map[string]string
	if ok, err := cache.GetJSON(ctx, cacheKeyActiveCampaigns, &cached); err == nil && ok && len(cached) > 0 {
		return cached
	}

	active, err := client.ActiveCampaigns(ctx)
	if err != nil || len(active) == 0 {
		if err != nil {
			logger.Warnw("active_campaigns_fetch_failed", "error", err)
		}
		fallback, dbErr := s.campaignRepo.ActiveMap()
		if dbErr != nil {
			logger.Errorw("active_campaigns_db_fallback_failed", "error", dbErr)
			return map[string]string{}
		}
		return fallback
	}

	if err := cache.SetJSON(ctx, cacheKeyActiveCampaigns, active, s.cacheTTL); err != nil {
		logger.Warnw("active_campaigns_cache_failed", "error", err)
	}
	return active
}

// approvedByMerchant 活跃活动中已批准的部分，按商家反查（merchant -> campaign_id）
func (s *IngestService) approvedByMerchant(active map[string]string) map[string]string {
	approved := make(map[string]string)
	for cid, merchant := range active {
		row, err := s.campaignRepo.GetByCampaignID(cid)
		if err != nil || row == nil {
			continue
		}
		if isApprovedStatus(row.UserRegistrationStatus) {
			approved[strings.ToLower(strings.TrimSpace(merchant))] = cid
		}
	}
	return approved
}

// campaignSnapshot 读取活动行并生成报价侧快照字段
func (s *IngestService) campaignSnapshot(campaignID string) (row *models.Campaign, snapshot string, eligible bool) {
	if campaignID == "" {
		return nil, "", false
	}
	row, err := s.campaignRepo.GetByCampaignID(campaignID)
	if err != nil || row == nil {
		return nil, "", false
	}
	snapshot = approvalSnapshot(row.UserRegistrationStatus)
	eligible = row.Status == constants.CampaignStatusRunning && isApprovedStatus(row.UserRegistrationStatus)
	return row, snapshot, eligible
}

// upsertOffer 报价落库，价格变动时顺带记一条价格历史
func (s *IngestService) upsertOffer(payload *models.Offer, strategy repository.OfferMatchStrategy) (*models.Offer, error) {
	var before *models.Offer
	var err error
	if strategy == repository.OfferMatchSourceID {
		before, err = s.offerRepo.GetBySourceID(payload.SourceID)
	} else {
		before, err = s.offerRepo.GetByNaturalKey(payload.Source, payload.SourceID)
	}
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.Upsert(payload, strategy)
	if err != nil {
		return nil, err
	}

	if payload.Price != nil {
		changed := before == nil || before.Price == nil || !before.Price.Decimal.Equal(payload.Price.Decimal)
		if changed {
			if err := s.historyRepo.Append(offer.ID, offer.Price, offer.Currency); err != nil {
				logger.Warnw("price_history_append_failed", "offer_id", offer.ID, "error", err)
			}
		}
	}
	return offer, nil
}

// upsertPolicies 佣金政策落库
func (s *IngestService) upsertPolicies(campaignID string, policies []upstream.Record) {
	for _, rec := range policies {
		payload := &models.CommissionPolicy{
			CampaignID:  campaignID,
			RewardType:  rec.FirstStr("reward_type", "type"),
			TargetMonth: rec.FirstStr("target_month"),
		}
		if f := rec.FirstFloat("sales_ratio", "ratio"); f != nil {
			payload.SalesRatio = models.MoneyPtr(models.NewMoneyFromFloat(*f))
		}
		if f := rec.Float("sales_price"); f != nil {
			payload.SalesPrice = models.MoneyPtr(models.NewMoneyFromFloat(*f))
		}
		if _, err := s.policyRepo.Upsert(payload); err != nil {
			logger.Warnw("commission_policy_upsert_failed", "campaign_id", campaignID, "error", err)
		}
	}
}

// upsertPromotions 促销落库（允许 campaign_id 为空的孤儿促销）
func (s *IngestService) upsertPromotions(campaignID, merchant string, promos []upstream.Record) {
	for _, prom := range promos {
		_, err := s.promotionRepo.Upsert(&models.Promotion{
			CampaignID: campaignID,
			Merchant:   merchant,
			Name:       prom.Str("name"),
			Content:    prom.FirstStr("content", "description"),
			StartTime:  prom.Str("start_time"),
			EndTime:    prom.Str("end_time"),
			Coupon:     prom.Str("coupon"),
			Link:       prom.Str("link"),
		})
		if err != nil {
			logger.Warnw("promotion_upsert_failed", "merchant", merchant, "error", err)
		}
	}
}

// upsertCampaignDetail 活动详情落库（字段级合并，占位串不回退）
func (s *IngestService) upsertCampaignDetail(ctx context.Context, client *upstream.Client, campaignID, fallbackMerchant string) {
	detail, err := client.CampaignDetail(ctx, campaignID)
	if err != nil || detail == nil {
		return
	}

	merchant := strings.ToLower(detail.FirstStr("merchant"))
	if merchant == "" {
		merchant = fallbackMerchant
	}
	userRaw := detail.FirstStr("user_registration_status", "publisher_status", "user_status")
	if userRaw == "" {
		// 个别版本把注册状态塞在 approval 里
		if _, user := splitApprovalOrUser(detail.Str("approval")); user != "" {
			userRaw = user
		}
	}

	cid := detail.FirstStr("campaign_id", "id")
	if cid == "" {
		cid = campaignID
	}
	_, err = s.campaignRepo.Upsert(&models.Campaign{
		CampaignID:             cid,
		Merchant:               merchant,
		Name:                   detail.Str("name"),
		Description:            detail.Str("description"),
		Status:                 mapStatus(detail.Str("status")),
		Approval:               detail.Str("approval"),
		StartTime:              detail.Str("start_time"),
		EndTime:                detail.Str("end_time"),
		UserRegistrationStatus: userRaw,
	})
	if err != nil {
		logger.Warnw("campaign_detail_upsert_failed", "campaign_id", campaignID, "error", err)
	}
}
