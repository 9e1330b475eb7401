package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销数据访问接口
type PromotionRepository interface {
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	Upsert(payload *models.Promotion) (*models.Promotion, error)
	DeleteByCampaignID(campaignID string) (int64, error)
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// List 促销列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	var promotions []models.Promotion
	var total int64

	query := r.db.Model(&models.Promotion{})
	if filter.Merchant != "" {
		query = query.Where("merchant = ?", filter.Merchant)
	}
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// Upsert 按近似键 (campaign_id, name, start_time, end_time) 查找后合并；
// 解析失败产生的孤儿促销（campaign_id 为空）同样保留。
func (r *GormPromotionRepository) Upsert(payload *models.Promotion) (*models.Promotion, error) {
	var existing models.Promotion
	err := r.db.Where("campaign_id = ? AND name = ? AND start_time = ? AND end_time = ?",
		CleanString(payload.CampaignID), CleanString(payload.Name),
		CleanString(payload.StartTime), CleanString(payload.EndTime)).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		promotion := &models.Promotion{
			CampaignID: CleanString(payload.CampaignID),
			Merchant:   CleanString(payload.Merchant),
			Name:       CleanString(payload.Name),
			Content:    CleanString(payload.Content),
			StartTime:  CleanString(payload.StartTime),
			EndTime:    CleanString(payload.EndTime),
			Coupon:     CleanString(payload.Coupon),
			Link:       CleanString(payload.Link),
		}
		if err := r.db.Create(promotion).Error; err != nil {
			return nil, err
		}
		return promotion, nil
	}

	applyString(&existing.Merchant, payload.Merchant)
	applyString(&existing.Content, payload.Content)
	applyString(&existing.Coupon, payload.Coupon)
	applyString(&existing.Link, payload.Link)

	if err := r.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// DeleteByCampaignID 按活动ID批量删除
func (r *GormPromotionRepository) DeleteByCampaignID(campaignID string) (int64, error) {
	result := r.db.Where("campaign_id = ?", campaignID).Delete(&models.Promotion{})
	return result.RowsAffected, result.Error
}
