package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// CommissionPolicyRepository 佣金政策数据访问接口
type CommissionPolicyRepository interface {
	ListByCampaignID(campaignID string) ([]models.CommissionPolicy, error)
	Upsert(payload *models.CommissionPolicy) (*models.CommissionPolicy, error)
}

// GormCommissionPolicyRepository GORM 实现
type GormCommissionPolicyRepository struct {
	db *gorm.DB
}

// NewCommissionPolicyRepository 创建佣金政策仓库
func NewCommissionPolicyRepository(db *gorm.DB) *GormCommissionPolicyRepository {
	return &GormCommissionPolicyRepository{db: db}
}

// ListByCampaignID 按活动ID列出政策
func (r *GormCommissionPolicyRepository) ListByCampaignID(campaignID string) ([]models.CommissionPolicy, error) {
	var policies []models.CommissionPolicy
	if err := r.db.Where("campaign_id = ?", campaignID).Order("id ASC").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

// Upsert 按近似键 (campaign_id, reward_type, target_month) 查找后合并
func (r *GormCommissionPolicyRepository) Upsert(payload *models.CommissionPolicy) (*models.CommissionPolicy, error) {
	var existing models.CommissionPolicy
	err := r.db.Where("campaign_id = ? AND reward_type = ? AND target_month = ?",
		CleanString(payload.CampaignID), CleanString(payload.RewardType), CleanString(payload.TargetMonth)).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		policy := &models.CommissionPolicy{
			CampaignID:  CleanString(payload.CampaignID),
			RewardType:  CleanString(payload.RewardType),
			SalesRatio:  payload.SalesRatio,
			SalesPrice:  payload.SalesPrice,
			TargetMonth: CleanString(payload.TargetMonth),
		}
		if err := r.db.Create(policy).Error; err != nil {
			return nil, err
		}
		return policy, nil
	}

	if payload.SalesRatio != nil {
		existing.SalesRatio = payload.SalesRatio
	}
	if payload.SalesPrice != nil {
		existing.SalesPrice = payload.SalesPrice
	}

	if err := r.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
