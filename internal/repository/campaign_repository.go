package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// CampaignRepository 活动数据访问接口
type CampaignRepository interface {
	GetByCampaignID(campaignID string) (*models.Campaign, error)
	List(filter CampaignListFilter) ([]models.Campaign, int64, error)
	ActiveMap() (map[string]string, error)
	MyCampaignIDs() (map[string]bool, error)
	CountByUserStatus() (map[string]int64, error)
	CountByStatus(status string) (int64, error)
	ListUnapprovedRunning() ([]models.Campaign, error)
	NormalizeUserStatuses() (int, error)
	Upsert(payload *models.Campaign) (*models.Campaign, error)
	DeleteAll() (int64, error)
}

// GormCampaignRepository GORM 实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动仓库
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// GetByCampaignID 按上游活动ID获取
func (r *GormCampaignRepository) GetByCampaignID(campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.Where("campaign_id = ?", campaignID).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// List 活动列表
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.Campaign, int64, error) {
	var campaigns []models.Campaign
	var total int64

	query := r.db.Model(&models.Campaign{})
	if filter.Merchant != "" {
		query = query.Where("merchant = ?", filter.Merchant)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OnlyActive {
		query = query.Where("status = ? AND user_registration_status = ?",
			constants.CampaignStatusRunning, constants.RegistrationApproved)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ActiveMap 返回 running 且 APPROVED 的活动映射（campaign_id -> merchant）
func (r *GormCampaignRepository) ActiveMap() (map[string]string, error) {
	var campaigns []models.Campaign
	err := r.db.Select("campaign_id", "merchant").
		Where("status = ? AND user_registration_status = ?",
			constants.CampaignStatusRunning, constants.RegistrationApproved).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	active := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		active[c.CampaignID] = c.Merchant
	}
	return active, nil
}

// MyCampaignIDs 返回注册状态为 APPROVED/PENDING 的活动ID集合
func (r *GormCampaignRepository) MyCampaignIDs() (map[string]bool, error) {
	var campaigns []models.Campaign
	err := r.db.Select("campaign_id").
		Where("user_registration_status IN ?",
			[]string{constants.RegistrationApproved, constants.RegistrationPending}).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	mine := make(map[string]bool, len(campaigns))
	for _, c := range campaigns {
		mine[c.CampaignID] = true
	}
	return mine, nil
}

// CountByUserStatus 按注册状态分组计数（空状态归入 "UNKNOWN"）
func (r *GormCampaignRepository) CountByUserStatus() (map[string]int64, error) {
	var rows []struct {
		UserRegistrationStatus string
		Count                  int64
	}
	err := r.db.Model(&models.Campaign{}).
		Select("user_registration_status, COUNT(*) AS count").
		Group("user_registration_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		status := row.UserRegistrationStatus
		if status == "" {
			status = "UNKNOWN"
		}
		counts[status] += row.Count
	}
	return counts, nil
}

// CountByStatus 按活动状态计数
func (r *GormCampaignRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// ListUnapprovedRunning 在投但发布者未获批的活动
func (r *GormCampaignRepository) ListUnapprovedRunning() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.Where("status = ? AND user_registration_status <> ?",
		constants.CampaignStatusRunning, constants.RegistrationApproved).
		Order("campaign_id ASC").
		Find(&campaigns).Error
	return campaigns, err
}

// NormalizeUserStatuses 对存量行重新归一化注册状态，返回修正行数
func (r *GormCampaignRepository) NormalizeUserStatuses() (int, error) {
	var campaigns []models.Campaign
	if err := r.db.Find(&campaigns).Error; err != nil {
		return 0, err
	}
	fixed := 0
	for i := range campaigns {
		normalized := NormalizeRegistrationStatus(campaigns[i].UserRegistrationStatus)
		if normalized == campaigns[i].UserRegistrationStatus {
			continue
		}
		err := r.db.Model(&campaigns[i]).
			Update("user_registration_status", normalized).Error
		if err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

// Upsert 按 campaign_id 查找后逐字段合并：
// 字符串字段遇占位串保持原值，注册状态先归一化再合并。
func (r *GormCampaignRepository) Upsert(payload *models.Campaign) (*models.Campaign, error) {
	payload.UserRegistrationStatus = NormalizeRegistrationStatus(payload.UserRegistrationStatus)

	existing, err := r.GetByCampaignID(payload.CampaignID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		campaign := &models.Campaign{
			CampaignID:             payload.CampaignID,
			Merchant:               CleanString(payload.Merchant),
			Name:                   CleanString(payload.Name),
			Description:            CleanString(payload.Description),
			Status:                 CleanString(payload.Status),
			Approval:               CleanString(payload.Approval),
			StartTime:              CleanString(payload.StartTime),
			EndTime:                CleanString(payload.EndTime),
			UserRegistrationStatus: CleanString(payload.UserRegistrationStatus),
		}
		if err := r.db.Create(campaign).Error; err != nil {
			return nil, err
		}
		return campaign, nil
	}

	applyString(&existing.Merchant, payload.Merchant)
	applyString(&existing.Name, payload.Name)
	applyString(&existing.Description, payload.Description)
	applyString(&existing.Status, payload.Status)
	applyString(&existing.Approval, payload.Approval)
	applyString(&existing.StartTime, payload.StartTime)
	applyString(&existing.EndTime, payload.EndTime)
	applyString(&existing.UserRegistrationStatus, payload.UserRegistrationStatus)

	if err := r.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteAll 清空活动表（批量维护入口专用）
func (r *GormCampaignRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.Campaign{})
	return result.RowsAffected, result.Error
}
