// Package conv 提供宽松解析、类型转换等工具函数。
//
// 所有 Parse* 函数都是全函数：输入格式错误时返回缺失标记（NaN / false），从不返回 error，
// 由调用方决定缺失时的默认值。
package conv

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// missingTokens 视为缺失的单元格文本（与常见 CSV 导出工具的缺失值写法一致）
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"NaN":  {},
	"nan":  {},
	"-nan": {},
	"-NaN": {},
	"null": {},
	"NULL": {},
	"None": {},
	"<NA>": {},
}

// IsMissing 判断单元格文本是否表示缺失值（先去掉首尾空白）。
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// ParseFloat 宽松解析浮点数。缺失、无法解析或为正负无穷时返回 (NaN, false)。
func ParseFloat(s string) (float64, bool) {
	if IsMissing(s) {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return math.NaN(), false
	}
	return f, true
}

// boolTokens 是标签列中按布尔值读取的文本（与 CSV 读取工具默认的 true/false 写法一致）
var boolTokens = map[string]float64{
	"true":  1,
	"True":  1,
	"TRUE":  1,
	"false": 0,
	"False": 0,
	"FALSE": 0,
}

// ParseLabel 解析标签文本：先识别布尔写法（true → 1，false → 0），否则按 ParseFloat 处理。
func ParseLabel(s string) (float64, bool) {
	if v, ok := boolTokens[strings.TrimSpace(s)]; ok {
		return v, true
	}
	return ParseFloat(s)
}

// TimeLayouts 是 ParseTime 依次尝试的时间格式（按常见程度排序）。
var TimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTime 宽松解析时间。没有时区信息的时间按 UTC 处理；
// 缺失或所有格式都无法解析时返回 (零值, false)。
func ParseTime(s string) (time.Time, bool) {
	if IsMissing(s) {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ConfigGet 从 map[string]any（如 YAML/JSON 解析结果）按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 从 config 取 int64。YAML/JSON 常得到 int 或 float64，此处兼容并统一为 int64。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return int64(val)
	case int64:
		return val
	case float64:
		return int64(val)
	case float32:
		return int64(val)
	default:
		return defaultVal
	}
}
