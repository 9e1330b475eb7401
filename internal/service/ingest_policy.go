package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

// IngestPolicy 入库策略开关，持久化在 api_configs 的 ingest_policy 行，
// model 字段存分号分隔的 key=value 串。
type IngestPolicy struct {
	OnlyWithCommission bool // 仅入库带佣金商品（只约束 Excel 导入路径）
	CheckURLs          bool // 入库前校验链接存活
	LinkcheckCursor    int  // 巡检游标 [0, mod)
	LinkcheckMod       int  // 巡检分片模数
	LinkcheckLimit     int  // 单次巡检上限（0 表示不限）
}

// IngestPolicyService 入库策略服务
type IngestPolicyService struct {
	configRepo repository.ApiConfigRepository
}

// NewIngestPolicyService 创建入库策略服务
func NewIngestPolicyService(configRepo repository.ApiConfigRepository) *IngestPolicyService {
	return &IngestPolicyService{configRepo: configRepo}
}

// parsePolicyString 解析分号分隔的 key=value 串（键统一小写）
func parsePolicyString(s string) map[string]string {
	flags := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		flags[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.ToLower(strings.TrimSpace(kv[1]))
	}
	return flags
}

func policyInt(flags map[string]string, key string, fallback, min int) int {
	v, ok := flags[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	if n < min {
		return min
	}
	return n
}

// Get 读取策略，行缺失或字段缺失时取默认值
func (s *IngestPolicyService) Get() (IngestPolicy, error) {
	policy := IngestPolicy{LinkcheckMod: 10}

	cfg, err := s.configRepo.GetByName(constants.ConfigNameIngestPolicy)
	if err != nil {
		return policy, err
	}
	if cfg == nil || cfg.Model == "" {
		return policy, nil
	}

	flags := parsePolicyString(cfg.Model)
	policy.OnlyWithCommission = flags[constants.PolicyKeyOnlyWithCommission] == "true"
	policy.CheckURLs = flags[constants.PolicyKeyCheckURLs] == "true"
	policy.LinkcheckCursor = policyInt(flags, constants.PolicyKeyLinkcheckCursor, 0, 0)
	policy.LinkcheckMod = policyInt(flags, constants.PolicyKeyLinkcheckMod, 10, 1)
	policy.LinkcheckLimit = policyInt(flags, constants.PolicyKeyLinkcheckLimit, 0, 0)
	return policy, nil
}

// SetFlag 写入单个策略键，其余键原样保留
func (s *IngestPolicyService) SetFlag(key string, value interface{}) error {
	cfg, err := s.configRepo.GetByName(constants.ConfigNameIngestPolicy)
	if err != nil {
		return err
	}

	rendered := strings.ToLower(fmt.Sprintf("%v", value))
	if cfg == nil {
		_, err = s.configRepo.Upsert(&models.ApiConfig{
			Name:    constants.ConfigNameIngestPolicy,
			BaseURL: "-",
			ApiKey:  "-",
			Model:   key + "=" + rendered,
		})
		return err
	}

	parts := make([]string, 0, 8)
	prefix := strings.ToLower(key) + "="
	for _, part := range strings.Split(cfg.Model, ";") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(strings.ToLower(part), prefix) {
			continue
		}
		parts = append(parts, part)
	}
	parts = append(parts, key+"="+rendered)

	cfg.Model = strings.Join(parts, ";")
	_, err = s.configRepo.Upsert(cfg)
	return err
}
