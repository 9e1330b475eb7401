package repository

import (
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
)

// placeholderSet 上游占位串集合，语义为"无信息"而非真实空值
var placeholderSet = map[string]struct{}{
	"":            {},
	"API_MISSING": {},
	"NO_DATA":     {},
}

// IsPlaceholder 判断字符串是否为上游占位串（空白串同样视为占位）
func IsPlaceholder(v string) bool {
	_, ok := placeholderSet[strings.TrimSpace(v)]
	return ok
}

// CleanString 清洗字符串，占位串归一为空串
func CleanString(v string) string {
	if IsPlaceholder(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// applyString 字段级合并：占位串不允许覆盖已有的具体值
func applyString(dst *string, incoming string) {
	if IsPlaceholder(incoming) {
		return
	}
	*dst = strings.TrimSpace(incoming)
}

// applyStringPtr 可空字符串字段合并：nil 或占位串跳过
func applyStringPtr(dst **string, incoming *string) {
	if incoming == nil || IsPlaceholder(*incoming) {
		return
	}
	v := strings.TrimSpace(*incoming)
	*dst = &v
}

// NormalizeRegistrationStatus 归一化发布者注册状态：
// 去空白、转大写，并将上游别名 SUCCESSFUL 重写为 APPROVED。
func NormalizeRegistrationStatus(v string) string {
	normalized := strings.ToUpper(strings.TrimSpace(v))
	if normalized == constants.RegistrationSuccessful {
		return constants.RegistrationApproved
	}
	return normalized
}
