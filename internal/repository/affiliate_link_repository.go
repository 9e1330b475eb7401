package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// AffiliateLinkRepository 推广链接数据访问接口
type AffiliateLinkRepository interface {
	GetByID(id uint) (*models.AffiliateLink, error)
	List(page, pageSize int) ([]models.AffiliateLink, int64, error)
	Create(link *models.AffiliateLink) error
	Update(link *models.AffiliateLink) error
	Delete(id uint) error
}

// GormAffiliateLinkRepository GORM 实现
type GormAffiliateLinkRepository struct {
	db *gorm.DB
}

// NewAffiliateLinkRepository 创建链接仓库
func NewAffiliateLinkRepository(db *gorm.DB) *GormAffiliateLinkRepository {
	return &GormAffiliateLinkRepository{db: db}
}

// GetByID 按主键获取
func (r *GormAffiliateLinkRepository) GetByID(id uint) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// List 链接列表
func (r *GormAffiliateLinkRepository) List(page, pageSize int) ([]models.AffiliateLink, int64, error) {
	var links []models.AffiliateLink
	var total int64

	if err := r.db.Model(&models.AffiliateLink{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	if err := r.db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// Create 创建链接
func (r *GormAffiliateLinkRepository) Create(link *models.AffiliateLink) error {
	return r.db.Create(link).Error
}

// Update 更新链接
func (r *GormAffiliateLinkRepository) Update(link *models.AffiliateLink) error {
	return r.db.Save(link).Error
}

// Delete 删除链接
func (r *GormAffiliateLinkRepository) Delete(id uint) error {
	return r.db.Delete(&models.AffiliateLink{}, id).Error
}
