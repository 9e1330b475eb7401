package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// AffiliateTemplateRepository 深链模板数据访问接口
type AffiliateTemplateRepository interface {
	GetByID(id uint) (*models.AffiliateTemplate, error)
	FindEnabled(network, platform string) (*models.AffiliateTemplate, error)
	List() ([]models.AffiliateTemplate, error)
	Create(template *models.AffiliateTemplate) error
	Update(template *models.AffiliateTemplate) error
	Delete(id uint) error
}

// GormAffiliateTemplateRepository GORM 实现
type GormAffiliateTemplateRepository struct {
	db *gorm.DB
}

// NewAffiliateTemplateRepository 创建模板仓库
func NewAffiliateTemplateRepository(db *gorm.DB) *GormAffiliateTemplateRepository {
	return &GormAffiliateTemplateRepository{db: db}
}

// GetByID 按主键获取
func (r *GormAffiliateTemplateRepository) GetByID(id uint) (*models.AffiliateTemplate, error) {
	var template models.AffiliateTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// FindEnabled 查找启用的模板：优先精确匹配平台，退化到网络级通配模板
func (r *GormAffiliateTemplateRepository) FindEnabled(network, platform string) (*models.AffiliateTemplate, error) {
	var template models.AffiliateTemplate
	err := r.db.Where("network = ? AND platform = ? AND enabled = ?", network, platform, true).
		Order("id ASC").First(&template).Error
	if err == nil {
		return &template, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = r.db.Where("network = ? AND (platform = '' OR platform IS NULL) AND enabled = ?", network, true).
		Order("id ASC").First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// List 全部模板
func (r *GormAffiliateTemplateRepository) List() ([]models.AffiliateTemplate, error) {
	var templates []models.AffiliateTemplate
	if err := r.db.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Create 创建模板
func (r *GormAffiliateTemplateRepository) Create(template *models.AffiliateTemplate) error {
	return r.db.Create(template).Error
}

// Update 更新模板
func (r *GormAffiliateTemplateRepository) Update(template *models.AffiliateTemplate) error {
	return r.db.Save(template).Error
}

// Delete 删除模板
func (r *GormAffiliateTemplateRepository) Delete(id uint) error {
	return r.db.Delete(&models.AffiliateTemplate{}, id).Error
}
