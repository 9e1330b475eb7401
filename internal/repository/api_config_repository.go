package repository

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// ApiConfigRepository 外部接入配置数据访问接口
type ApiConfigRepository interface {
	GetByName(name string) (*models.ApiConfig, error)
	List() ([]models.ApiConfig, error)
	Upsert(payload *models.ApiConfig) (*models.ApiConfig, error)
	Delete(name string) error
}

// GormApiConfigRepository GORM 实现
type GormApiConfigRepository struct {
	db *gorm.DB
}

// NewApiConfigRepository 创建配置仓库
func NewApiConfigRepository(db *gorm.DB) *GormApiConfigRepository {
	return &GormApiConfigRepository{db: db}
}

// GetByName 按名称获取配置
func (r *GormApiConfigRepository) GetByName(name string) (*models.ApiConfig, error) {
	var config models.ApiConfig
	if err := r.db.Where("name = ?", name).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// List 全部配置
func (r *GormApiConfigRepository) List() ([]models.ApiConfig, error) {
	var configs []models.ApiConfig
	if err := r.db.Order("id ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// Upsert 按名称更新或创建
func (r *GormApiConfigRepository) Upsert(payload *models.ApiConfig) (*models.ApiConfig, error) {
	existing, err := r.GetByName(payload.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		config := &models.ApiConfig{
			Name:    payload.Name,
			BaseURL: payload.BaseURL,
			ApiKey:  payload.ApiKey,
			Model:   payload.Model,
		}
		if err := r.db.Create(config).Error; err != nil {
			return nil, err
		}
		return config, nil
	}

	if payload.BaseURL != "" {
		existing.BaseURL = payload.BaseURL
	}
	if payload.ApiKey != "" {
		existing.ApiKey = payload.ApiKey
	}
	existing.Model = payload.Model

	if err := r.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete 按名称删除
func (r *GormApiConfigRepository) Delete(name string) error {
	return r.db.Where("name = ?", name).Delete(&models.ApiConfig{}).Error
}
