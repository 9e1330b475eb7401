package service

import (
	"fmt"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

// LinkService 推广链接、接入配置与深链模板的管理门面
type LinkService struct {
	linkRepo     repository.AffiliateLinkRepository
	configRepo   repository.ApiConfigRepository
	templateRepo repository.AffiliateTemplateRepository
}

// NewLinkService 创建链接管理服务
func NewLinkService(
	linkRepo repository.AffiliateLinkRepository,
	configRepo repository.ApiConfigRepository,
	templateRepo repository.AffiliateTemplateRepository,
) *LinkService {
	return &LinkService{linkRepo: linkRepo, configRepo: configRepo, templateRepo: templateRepo}
}

// ListLinks 推广链接列表
func (s *LinkService) ListLinks(page, pageSize int) ([]models.AffiliateLink, int64, error) {
	return s.linkRepo.List(page, pageSize)
}

// GetLink 推广链接详情
func (s *LinkService) GetLink(id uint) (*models.AffiliateLink, error) {
	link, err := s.linkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// CreateLink 新建推广链接
func (s *LinkService) CreateLink(link *models.AffiliateLink) error {
	if strings.TrimSpace(link.URL) == "" {
		return fmt.Errorf("%w: url required", ErrInvalidParam)
	}
	return s.linkRepo.Create(link)
}

// UpdateLink 更新推广链接
func (s *LinkService) UpdateLink(id uint, payload *models.AffiliateLink) (*models.AffiliateLink, error) {
	link, err := s.GetLink(id)
	if err != nil {
		return nil, err
	}
	if payload.Name != "" {
		link.Name = payload.Name
	}
	if payload.URL != "" {
		link.URL = payload.URL
	}
	if payload.AffiliateURL != "" {
		link.AffiliateURL = payload.AffiliateURL
	}
	if err := s.linkRepo.Update(link); err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteLink 删除推广链接
func (s *LinkService) DeleteLink(id uint) error {
	if _, err := s.GetLink(id); err != nil {
		return err
	}
	return s.linkRepo.Delete(id)
}

// ListConfigs 接入配置列表
func (s *LinkService) ListConfigs() ([]models.ApiConfig, error) {
	return s.configRepo.List()
}

// GetConfig 按名称取接入配置
func (s *LinkService) GetConfig(name string) (*models.ApiConfig, error) {
	cfg, err := s.configRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigNotFound
	}
	return cfg, nil
}

// UpsertConfig 按名称写入接入配置
func (s *LinkService) UpsertConfig(payload *models.ApiConfig) (*models.ApiConfig, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return nil, fmt.Errorf("%w: config name required", ErrInvalidParam)
	}
	return s.configRepo.Upsert(payload)
}

// DeleteConfig 删除接入配置
func (s *LinkService) DeleteConfig(name string) error {
	if _, err := s.GetConfig(name); err != nil {
		return err
	}
	return s.configRepo.Delete(name)
}

// ListTemplates 深链模板列表
func (s *LinkService) ListTemplates() ([]models.AffiliateTemplate, error) {
	return s.templateRepo.List()
}

// SaveTemplate 新建或更新深链模板。
// (network, platform) 唯一，模板必须带 {target} 占位符。
func (s *LinkService) SaveTemplate(payload *models.AffiliateTemplate) (*models.AffiliateTemplate, error) {
	payload.Network = strings.ToLower(strings.TrimSpace(payload.Network))
	payload.Platform = strings.ToLower(strings.TrimSpace(payload.Platform))
	if payload.Network == "" {
		return nil, fmt.Errorf("%w: network required", ErrInvalidParam)
	}
	if !strings.Contains(payload.Template, deeplinkPlaceholder) {
		return nil, fmt.Errorf("%w: template missing %s placeholder", ErrInvalidParam, deeplinkPlaceholder)
	}

	existing, err := s.templateRepo.FindEnabled(payload.Network, payload.Platform)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Platform == payload.Platform && existing.ID != payload.ID {
		existing.Template = payload.Template
		existing.DefaultParams = payload.DefaultParams
		existing.Enabled = payload.Enabled
		if err := s.templateRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if payload.ID != 0 {
		if err := s.templateRepo.Update(payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
	if err := s.templateRepo.Create(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteTemplate 删除深链模板
func (s *LinkService) DeleteTemplate(id uint) error {
	tmpl, err := s.templateRepo.GetByID(id)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return ErrTemplateNotFound
	}
	return s.templateRepo.Delete(id)
}
