package feature

import "sort"

// CoercionStats 记录特征工程中被降级为缺失标记或默认值的单元格数量。
//
// Missing：输入本身缺失（空单元格、NA 等）；Invalid：输入非空但无法解析。
// 只用于观测（日志/监控），不影响特征计算结果。
type CoercionStats struct {
	Rows    int
	Missing map[string]int
	Invalid map[string]int
}

// NewCoercionStats 创建空的统计
func NewCoercionStats(rows int) *CoercionStats {
	return &CoercionStats{
		Rows:    rows,
		Missing: make(map[string]int),
		Invalid: make(map[string]int),
	}
}

func (s *CoercionStats) addMissing(column string) { s.Missing[column]++ }
func (s *CoercionStats) addInvalid(column string) { s.Invalid[column]++ }

// Total 返回某列被降级的单元格总数
func (s *CoercionStats) Total(column string) int {
	return s.Missing[column] + s.Invalid[column]
}

// MissingRate 返回某列的降级比例（0~1）
func (s *CoercionStats) MissingRate(column string) float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.Total(column)) / float64(s.Rows)
}

// Columns 返回存在降级记录的列（排序）
func (s *CoercionStats) Columns() []string {
	set := make(map[string]struct{}, len(s.Missing)+len(s.Invalid))
	for k := range s.Missing {
		set[k] = struct{}{}
	}
	for k := range s.Invalid {
		set[k] = struct{}{}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
