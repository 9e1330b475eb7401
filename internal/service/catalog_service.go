package service

import (
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

// CatalogService 报价/活动目录的读写门面
type CatalogService struct {
	campaignRepo  repository.CampaignRepository
	offerRepo     repository.OfferRepository
	promotionRepo repository.PromotionRepository
	policyRepo    repository.CommissionPolicyRepository
	historyRepo   repository.PriceHistoryRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(
	campaignRepo repository.CampaignRepository,
	offerRepo repository.OfferRepository,
	promotionRepo repository.PromotionRepository,
	policyRepo repository.CommissionPolicyRepository,
	historyRepo repository.PriceHistoryRepository,
) *CatalogService {
	return &CatalogService{
		campaignRepo:  campaignRepo,
		offerRepo:     offerRepo,
		promotionRepo: promotionRepo,
		policyRepo:    policyRepo,
		historyRepo:   historyRepo,
	}
}

// ListOffers 报价列表
func (s *CatalogService) ListOffers(filter repository.OfferListFilter) ([]models.Offer, int64, error) {
	return s.offerRepo.List(filter)
}

// GetOffer 报价详情
func (s *CatalogService) GetOffer(id uint) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

// OfferUpdate 报价可编辑字段
type OfferUpdate struct {
	Title        *string  `json:"title"`
	URL          *string  `json:"url"`
	AffiliateURL *string  `json:"affiliate_url"`
	ImageURL     *string  `json:"image_url"`
	Price        *float64 `json:"price"`
	Currency     *string  `json:"currency"`
}

// UpdateOffer 人工修正报价字段，传入为准不走占位串合并
func (s *CatalogService) UpdateOffer(id uint, update OfferUpdate) (*models.Offer, error) {
	offer, err := s.GetOffer(id)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		offer.Title = *update.Title
	}
	if update.URL != nil {
		offer.URL = *update.URL
	}
	if update.AffiliateURL != nil {
		if *update.AffiliateURL == "" {
			offer.AffiliateURL = nil
			offer.AffiliateLinkAvailable = false
		} else {
			offer.AffiliateURL = update.AffiliateURL
			offer.AffiliateLinkAvailable = true
		}
	}
	if update.ImageURL != nil {
		offer.ImageURL = *update.ImageURL
	}
	if update.Price != nil {
		offer.Price = models.MoneyPtr(models.NewMoneyFromFloat(*update.Price))
	}
	if update.Currency != nil {
		offer.Currency = *update.Currency
	}
	return s.offerRepo.Save(offer)
}

// DeleteOffer 删除单条报价
func (s *CatalogService) DeleteOffer(id uint) error {
	offer, err := s.offerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if offer == nil {
		return ErrOfferNotFound
	}
	return s.offerRepo.Delete(id)
}

// DeleteOffersBySource 按来源批量删除报价
func (s *CatalogService) DeleteOffersBySource(source string) (int64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, ErrInvalidParam
	}
	return s.offerRepo.DeleteBySource(source)
}

// OfferPriceHistory 报价价格历史（新到旧）
func (s *CatalogService) OfferPriceHistory(id uint, limit int) ([]models.PriceHistory, error) {
	if _, err := s.GetOffer(id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByOfferID(id, limit)
}

// ListCampaigns 活动列表
func (s *CatalogService) ListCampaigns(filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	return s.campaignRepo.List(filter)
}

// GetCampaign 活动详情（带佣金政策）
func (s *CatalogService) GetCampaign(campaignID string) (*models.Campaign, []models.CommissionPolicy, error) {
	campaign, err := s.campaignRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign == nil {
		return nil, nil, ErrCampaignNotFound
	}
	policies, err := s.policyRepo.ListByCampaignID(campaignID)
	if err != nil {
		return nil, nil, err
	}
	return campaign, policies, nil
}

// ListPromotions 促销列表
func (s *CatalogService) ListPromotions(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.promotionRepo.List(filter)
}

// CampaignSummary 活动总览
type CampaignSummary struct {
	Total        int64            `json:"total"`
	Running      int64            `json:"running"`
	Approved     int64            `json:"approved"`
	ByUserStatus map[string]int64 `json:"by_user_status"`
}

// SummarizeCampaigns 按状态与注册状态统计活动
func (s *CatalogService) SummarizeCampaigns() (*CampaignSummary, error) {
	counts, err := s.campaignRepo.CountByUserStatus()
	if err != nil {
		return nil, err
	}
	summary := &CampaignSummary{ByUserStatus: counts}
	for status, n := range counts {
		summary.Total += n
		if status == constants.RegistrationApproved {
			summary.Approved += n
		}
	}
	running, err := s.campaignRepo.CountByStatus(constants.CampaignStatusRunning)
	if err != nil {
		return nil, err
	}
	summary.Running = running
	return summary, nil
}

// RegistrationAlert 注册状态异常告警：活动在投但发布者未获批
type RegistrationAlert struct {
	CampaignID string `json:"campaign_id"`
	Merchant   string `json:"merchant"`
	Name       string `json:"name"`
	UserStatus string `json:"user_status"`
	OfferCount int64  `json:"offer_count"`
}

// RegistrationAlerts 列出 running 但未批准的活动及其报价量，
// 报价量非零说明继续引流会分不到佣金。
func (s *CatalogService) RegistrationAlerts() ([]RegistrationAlert, error) {
	campaigns, err := s.campaignRepo.ListUnapprovedRunning()
	if err != nil {
		return nil, err
	}
	alerts := make([]RegistrationAlert, 0, len(campaigns))
	for _, c := range campaigns {
		count, err := s.offerRepo.CountByCampaignID(c.CampaignID)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, RegistrationAlert{
			CampaignID: c.CampaignID,
			Merchant:   c.Merchant,
			Name:       c.Name,
			UserStatus: c.UserRegistrationStatus,
			OfferCount: count,
		})
	}
	return alerts, nil
}

// NormalizeCampaigns 对存量活动重新跑一遍注册状态归一化，
// 返回被修正的行数（历史数据修复入口）。
func (s *CatalogService) NormalizeCampaigns() (int, error) {
	return s.campaignRepo.NormalizeUserStatuses()
}
