package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

const deeplinkPlaceholder = "{target}"

// ConvertService 深度链接转换：按 (network, platform) 模板把商品原始
// 链接替换为推广链接，平台级模板缺失时回退网络级通配模板。
type ConvertService struct {
	templateRepo repository.AffiliateTemplateRepository
	resolver     *Resolver
	network      string
}

// NewConvertService 创建转换服务
func NewConvertService(templateRepo repository.AffiliateTemplateRepository, resolver *Resolver, network string) *ConvertService {
	if network == "" {
		network = "accesstrade"
	}
	return &ConvertService{templateRepo: templateRepo, resolver: resolver, network: network}
}

// Convert 把目标链接转换为推广链接。
// 目标域名须与商家匹配，模板必须带 {target} 占位符。
func (s *ConvertService) Convert(merchant, target string) (string, error) {
	merchant = s.resolver.NormalizeMerchant(merchant)
	if merchant == "" || strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("%w: merchant and target url required", ErrInvalidParam)
	}
	if !s.domainAllowed(merchant, target) {
		return "", fmt.Errorf("%w: url does not belong to merchant %q", ErrInvalidParam, merchant)
	}

	tmpl, err := s.templateRepo.FindEnabled(s.network, merchant)
	if err != nil {
		return "", err
	}
	if tmpl == nil {
		return "", fmt.Errorf("%w: network %q platform %q", ErrTemplateNotFound, s.network, merchant)
	}
	if !strings.Contains(tmpl.Template, deeplinkPlaceholder) {
		return "", fmt.Errorf("%w: template %d missing %s placeholder",
			ErrTemplateUnusable, tmpl.ID, deeplinkPlaceholder)
	}

	converted := strings.ReplaceAll(tmpl.Template, deeplinkPlaceholder, url.QueryEscape(target))
	return mergeDefaultParams(converted, tmpl.DefaultParams)
}

// domainAllowed 目标域名是否归属该商家（按归一化商家名比对）
func (s *ConvertService) domainAllowed(merchant, target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, label := range strings.Split(host, ".") {
		if s.resolver.NormalizeMerchant(label) == merchant {
			return true
		}
	}
	return false
}

// mergeDefaultParams 把模板默认参数并入结果链接，已有同名参数不覆盖
func mergeDefaultParams(rawURL string, defaults map[string]interface{}) (string, error) {
	if len(defaults) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: template produced invalid url", ErrTemplateUnusable)
	}
	query := u.Query()
	for key, value := range defaults {
		if query.Has(key) {
			continue
		}
		query.Set(key, fmt.Sprint(value))
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
