package upstream

import (
	"fmt"
	"strconv"
	"strings"
)

// Record 上游返回的松散结构记录
type Record map[string]interface{}

// Str 取字符串字段（非字符串标量按通用格式转换）
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON 数字统一是 float64，整数值去掉小数尾巴
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// FirstStr 按顺序取第一个非空字符串字段
func (r Record) FirstStr(keys ...string) string {
	for _, key := range keys {
		if v := r.Str(key); v != "" {
			return v
		}
	}
	return ""
}

// Float 取可空数值字段，缺失或不可解析返回 nil
func (r Record) Float(key string) *float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// FirstFloat 按顺序取第一个可解析的数值字段
func (r Record) FirstFloat(keys ...string) *float64 {
	for _, key := range keys {
		if v := r.Float(key); v != nil {
			return v
		}
	}
	return nil
}

// Sub 取嵌套对象字段
func (r Record) Sub(key string) Record {
	v, ok := r[key]
	if !ok {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return Record(m)
	}
	return nil
}

// List 取嵌套数组字段（元素为对象）
func (r Record) List(key string) []Record {
	v, ok := r[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
