package service

import (
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// ConfigCredentialSource 从接入配置表取上游凭据。
// 每次请求现取，改配置行即可热切换，不用重启。
type ConfigCredentialSource struct {
	configRepo repository.ApiConfigRepository
}

// NewConfigCredentialSource 创建配置表凭据源
func NewConfigCredentialSource(configRepo repository.ApiConfigRepository) *ConfigCredentialSource {
	return &ConfigCredentialSource{configRepo: configRepo}
}

// Credentials 读取 accesstrade 配置行
func (s *ConfigCredentialSource) Credentials() (upstream.Credentials, error) {
	cfg, err := s.configRepo.GetByName(constants.ConfigNameAccesstrade)
	if err != nil {
		return upstream.Credentials{}, err
	}
	if cfg == nil {
		return upstream.Credentials{}, upstream.ErrNotConfigured
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	apiKey := strings.TrimSpace(cfg.ApiKey)
	if baseURL == "" || apiKey == "" {
		return upstream.Credentials{}, upstream.ErrNotConfigured
	}
	return upstream.Credentials{BaseURL: baseURL, APIKey: apiKey}, nil
}
