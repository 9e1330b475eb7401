package repository

import (
	"errors"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// OfferRepository 报价数据访问接口
type OfferRepository interface {
	GetByID(id uint) (*models.Offer, error)
	GetByNaturalKey(source, sourceID string) (*models.Offer, error)
	GetBySourceID(sourceID string) (*models.Offer, error)
	List(filter OfferListFilter) ([]models.Offer, int64, error)
	ListSlice(modulus, cursor, limit int) ([]models.Offer, error)
	Upsert(payload *models.Offer, strategy OfferMatchStrategy) (*models.Offer, error)
	Save(offer *models.Offer) (*models.Offer, error)
	Delete(id uint) error
	DeleteBySource(source string) (int64, error)
	Count() (int64, error)
	CountByCampaignID(campaignID string) (int64, error)
}

// GormOfferRepository GORM 实现
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository 创建报价仓库
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// GetByID 按主键获取
func (r *GormOfferRepository) GetByID(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// GetByNaturalKey 严格口径：按 (source, source_id) 获取
func (r *GormOfferRepository) GetByNaturalKey(source, sourceID string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.Where("source = ? AND source_id = ?", source, sourceID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// GetBySourceID 宽松口径：只按 source_id 获取（取最早一条）
func (r *GormOfferRepository) GetBySourceID(sourceID string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.Where("source_id = ?", sourceID).Order("id ASC").First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// List 报价列表
func (r *GormOfferRepository) List(filter OfferListFilter) ([]models.Offer, int64, error) {
	var offers []models.Offer
	var total int64

	query := r.db.Model(&models.Offer{})
	if filter.Merchant != "" {
		query = query.Where("merchant = ?", filter.Merchant)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.OnlyEligible {
		query = query.Where("eligible_commission = ?", true)
	}
	if filter.OnlyWithAffURL {
		query = query.Where("affiliate_link_available = ?", true)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where("title LIKE ?", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	if err := query.Order("updated_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

// ListSlice 巡检分片：id % modulus == cursor 的报价，按 id 升序
func (r *GormOfferRepository) ListSlice(modulus, cursor, limit int) ([]models.Offer, error) {
	if modulus < 1 {
		modulus = 1
	}
	var offers []models.Offer
	query := r.db.Where("id % ? = ?", modulus, cursor).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// Upsert 按所选去重口径查找后合并：
// 字符串字段遇占位串保持原值；价格等可空数值非 nil 即覆盖（含 0）；
// 布尔快照每次重算并覆盖（含 false）。
func (r *GormOfferRepository) Upsert(payload *models.Offer, strategy OfferMatchStrategy) (*models.Offer, error) {
	var existing *models.Offer
	var err error
	switch strategy {
	case OfferMatchSourceID:
		existing, err = r.GetBySourceID(payload.SourceID)
	default:
		existing, err = r.GetByNaturalKey(payload.Source, payload.SourceID)
	}
	if err != nil {
		return nil, err
	}

	if existing == nil {
		offer := &models.Offer{
			Source:                 payload.Source,
			SourceID:               payload.SourceID,
			Merchant:               CleanString(payload.Merchant),
			Title:                  CleanString(payload.Title),
			URL:                    CleanString(payload.URL),
			ImageURL:               CleanString(payload.ImageURL),
			Price:                  payload.Price,
			Currency:               CleanString(payload.Currency),
			CampaignID:             CleanString(payload.CampaignID),
			SourceType:             CleanString(payload.SourceType),
			ProductID:              CleanString(payload.ProductID),
			ApprovalStatus:         CleanString(payload.ApprovalStatus),
			EligibleCommission:     payload.EligibleCommission,
			AffiliateLinkAvailable: payload.AffiliateLinkAvailable,
			Extra:                  payload.Extra,
		}
		if payload.AffiliateURL != nil && !IsPlaceholder(*payload.AffiliateURL) {
			v := strings.TrimSpace(*payload.AffiliateURL)
			offer.AffiliateURL = &v
		}
		if err := r.db.Create(offer).Error; err != nil {
			return nil, err
		}
		return offer, nil
	}

	applyString(&existing.Merchant, payload.Merchant)
	applyString(&existing.Title, payload.Title)
	applyString(&existing.URL, payload.URL)
	applyString(&existing.ImageURL, payload.ImageURL)
	applyString(&existing.Currency, payload.Currency)
	applyString(&existing.CampaignID, payload.CampaignID)
	applyString(&existing.SourceType, payload.SourceType)
	applyString(&existing.ProductID, payload.ProductID)
	applyString(&existing.ApprovalStatus, payload.ApprovalStatus)
	applyStringPtr(&existing.AffiliateURL, payload.AffiliateURL)
	if payload.Price != nil {
		existing.Price = payload.Price
	}
	existing.EligibleCommission = payload.EligibleCommission
	existing.AffiliateLinkAvailable = payload.AffiliateLinkAvailable
	if len(payload.Extra) > 0 {
		existing.Extra = payload.Extra
	}

	if err := r.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// Save 整行保存（人工编辑路径，不走占位串合并）
func (r *GormOfferRepository) Save(offer *models.Offer) (*models.Offer, error) {
	if err := r.db.Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// Delete 删除报价
func (r *GormOfferRepository) Delete(id uint) error {
	return r.db.Delete(&models.Offer{}, id).Error
}

// DeleteBySource 按来源批量删除
func (r *GormOfferRepository) DeleteBySource(source string) (int64, error) {
	result := r.db.Where("source = ?", source).Delete(&models.Offer{})
	return result.RowsAffected, result.Error
}

// Count 报价总量
func (r *GormOfferRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Offer{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountByCampaignID 某活动下的报价量
func (r *GormOfferRepository) CountByCampaignID(campaignID string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Offer{}).Where("campaign_id = ?", campaignID).Count(&total).Error
	return total, err
}
