package service

import (
	"sort"
	"strings"
)

// MatchTier 商家标签到活动的匹配层级
type MatchTier string

const (
	MatchExplicit MatchTier = "explicit" // 记录自带有效 campaign_id
	MatchExact    MatchTier = "exact"    // 归一化商家名精确命中
	MatchSuffix   MatchTier = "suffix"   // 活动商家键以其结尾或下划线分段后缀命中
	MatchContains MatchTier = "contains" // 子串命中
	MatchNone     MatchTier = "none"     // 未命中
)

// merchantAliases 上游商家标签别名表
var merchantAliases = map[string]string{
	"tikivn":    "tiki",
	"lazadacps": "lazada",
	"shopeevn":  "shopee",
}

// Resolver 商家-活动解析器。
// 匹配按层级推进，同层级内按排序后的键序扫描，结果可复现。
type Resolver struct{}

// NewResolver 创建解析器
func NewResolver() *Resolver {
	return &Resolver{}
}

// NormalizeMerchant 归一化商家标签：小写、去域名后缀、套别名表
func (r *Resolver) NormalizeMerchant(label string) string {
	m := strings.ToLower(strings.TrimSpace(label))
	if m == "" {
		return ""
	}
	if idx := strings.Index(m, "."); idx > 0 {
		m = m[:idx]
	}
	if alias, ok := merchantAliases[m]; ok {
		return alias
	}
	return m
}

// Match 按层级解析活动：explicit -> exact -> suffix -> contains。
// active 为 campaign_id -> merchant 映射。
func (r *Resolver) Match(explicitCID, merchantLabel string, active map[string]string) (string, MatchTier) {
	if explicitCID != "" {
		if _, ok := active[explicitCID]; ok {
			return explicitCID, MatchExplicit
		}
	}

	merchant := r.NormalizeMerchant(merchantLabel)
	if merchant == "" || len(active) == 0 {
		return "", MatchNone
	}

	// 反查表按商家键排序，同名商家取最小 campaign_id
	inverse := make(map[string]string, len(active))
	merchants := make([]string, 0, len(active))
	for cid, m := range active {
		key := strings.ToLower(strings.TrimSpace(m))
		if key == "" {
			continue
		}
		if existing, ok := inverse[key]; !ok || cid < existing {
			if !ok {
				merchants = append(merchants, key)
			}
			inverse[key] = cid
		}
	}
	sort.Strings(merchants)

	if cid, ok := inverse[merchant]; ok {
		return cid, MatchExact
	}

	for _, key := range merchants {
		if strings.HasSuffix(key, merchant) || strings.HasSuffix(key, "_"+merchant) {
			return inverse[key], MatchSuffix
		}
	}

	for _, key := range merchants {
		if strings.Contains(key, merchant) {
			return inverse[key], MatchContains
		}
	}

	return "", MatchNone
}

// ResolveEligible 在 Match 基础上做可入库性校验：
// 命中的活动必须属于已批准可用集合（approvedByMerchant 的取值），
// 否则尝试换绑到同商家下另一个已批准活动，仍无则判定未命中。
func (r *Resolver) ResolveEligible(
	explicitCID, merchantLabel string,
	active map[string]string,
	approvedByMerchant map[string]string,
) (string, MatchTier) {
	cid, tier := r.Match(explicitCID, merchantLabel, active)
	if cid == "" {
		return "", MatchNone
	}

	approved := make(map[string]struct{}, len(approvedByMerchant))
	for _, acid := range approvedByMerchant {
		approved[acid] = struct{}{}
	}
	if _, ok := approved[cid]; ok {
		return cid, tier
	}

	// 换绑：先按记录商家，再按命中活动的商家
	for _, candidate := range []string{r.NormalizeMerchant(merchantLabel), r.NormalizeMerchant(active[cid])} {
		if candidate == "" {
			continue
		}
		if acid, ok := approvedByMerchant[candidate]; ok {
			return acid, tier
		}
	}
	return "", MatchNone
}
