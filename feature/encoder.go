package feature

import (
	"fmt"
	"sort"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/pkg/conv"
)

// HandleUnknownIgnore 表示 Transform 时遇到训练集中没有的类别，输出该列全 0 的指示向量
const HandleUnknownIgnore = "ignore"

// OneHotEncoder One-Hot 编码（独热编码）
// 将类别特征转换为二进制向量，每个已知类别对应一个维度。
//
// Fit 从训练集收集每列的类别并排序（全部为数值时按数值排序，否则按字典序）；
// 未知类别编码为全 0，不报错。
type OneHotEncoder struct {
	columns    []string
	categories [][]string
	index      []map[string]int
	fitted     bool
}

// NewOneHotEncoder 创建未 fit 的 One-Hot 编码器
func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{columns: append([]string(nil), columns...)}
}

// NewFittedOneHotEncoder 用已持久化的类别列表恢复编码器
func NewFittedOneHotEncoder(columns []string, categories [][]string) (*OneHotEncoder, error) {
	if len(columns) != len(categories) {
		return nil, invalidInput(fmt.Sprintf("类别列表个数 %d 与列数 %d 不一致", len(categories), len(columns)))
	}
	e := NewOneHotEncoder(columns)
	e.categories = make([][]string, len(categories))
	for j, cats := range categories {
		e.categories[j] = append([]string(nil), cats...)
	}
	if err := e.buildIndex(); err != nil {
		return nil, err
	}
	e.fitted = true
	return e, nil
}

// Columns 返回编码器对应的列
func (e *OneHotEncoder) Columns() []string { return append([]string(nil), e.columns...) }

// Categories 返回每列的有序类别（拷贝）
func (e *OneHotEncoder) Categories() [][]string {
	out := make([][]string, len(e.categories))
	for j, cats := range e.categories {
		out[j] = append([]string(nil), cats...)
	}
	return out
}

// Width 返回编码后的总维度（所有列类别数之和）
func (e *OneHotEncoder) Width() int {
	n := 0
	for _, cats := range e.categories {
		n += len(cats)
	}
	return n
}

// FeatureNames 返回展开后的特征名，形如 hour_of_day_13
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.Width())
	for j, col := range e.columns {
		for _, cat := range e.categories[j] {
			names = append(names, fmt.Sprintf("%s_%s", col, cat))
		}
	}
	return names
}

// Fit 从训练表收集每个类别列的取值
func (e *OneHotEncoder) Fit(t *dataset.Table) error {
	if e.fitted {
		return ErrAlreadyFitted
	}
	if t.Rows() == 0 {
		return invalidInput("训练集为空，无法 fit")
	}
	cols, err := e.lookup(t)
	if err != nil {
		return err
	}
	e.categories = make([][]string, len(cols))
	for j, col := range cols {
		seen := make(map[string]struct{})
		for i := 0; i < col.Len(); i++ {
			seen[col.Text(i)] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sortCategories(cats)
		e.categories[j] = cats
	}
	if err := e.buildIndex(); err != nil {
		return err
	}
	e.fitted = true
	return nil
}

// Transform 将表中的类别列编码为 rows×Width() 的矩阵
func (e *OneHotEncoder) Transform(t *dataset.Table) (*Matrix, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	cols, err := e.lookup(t)
	if err != nil {
		return nil, err
	}
	out := NewMatrix(t.Rows(), e.Width())
	offset := 0
	for j, col := range cols {
		for i := 0; i < t.Rows(); i++ {
			if k, ok := e.index[j][col.Text(i)]; ok {
				out.Set(i, offset+k, 1)
			}
		}
		offset += len(e.categories[j])
	}
	return out, nil
}

// FitTransform 先 Fit 再 Transform 同一张表
func (e *OneHotEncoder) FitTransform(t *dataset.Table) (*Matrix, error) {
	if err := e.Fit(t); err != nil {
		return nil, err
	}
	return e.Transform(t)
}

// EncodeValues 编码单条记录，values 与 Columns() 一一对应
func (e *OneHotEncoder) EncodeValues(values []string) ([]float64, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if len(values) != len(e.columns) {
		return nil, invalidInput(fmt.Sprintf("输入有 %d 个类别值，编码器需要 %d 个", len(values), len(e.columns)))
	}
	out := make([]float64, e.Width())
	offset := 0
	for j, v := range values {
		if k, ok := e.index[j][v]; ok {
			out[offset+k] = 1
		}
		offset += len(e.categories[j])
	}
	return out, nil
}

func (e *OneHotEncoder) lookup(t *dataset.Table) ([]*dataset.Column, error) {
	cols := make([]*dataset.Column, len(e.columns))
	var missing []string
	for j, name := range e.columns {
		col, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[j] = col
	}
	if len(missing) > 0 {
		return nil, &core.MissingColumnsError{Columns: missing}
	}
	return cols, nil
}

func (e *OneHotEncoder) buildIndex() error {
	e.index = make([]map[string]int, len(e.categories))
	for j, cats := range e.categories {
		idx := make(map[string]int, len(cats))
		for k, cat := range cats {
			if _, dup := idx[cat]; dup {
				return invalidInput(fmt.Sprintf("列 %s 的类别 %s 重复", e.columns[j], cat))
			}
			idx[cat] = k
		}
		e.index[j] = idx
	}
	return nil
}

// sortCategories 全部可解析为数值时按数值升序，否则按字典序
func sortCategories(cats []string) {
	numeric := true
	values := make(map[string]float64, len(cats))
	for _, c := range cats {
		f, ok := conv.ParseFloat(c)
		if !ok {
			numeric = false
			break
		}
		values[c] = f
	}
	if !numeric {
		sort.Strings(cats)
		return
	}
	sort.Slice(cats, func(a, b int) bool {
		va, vb := values[cats[a]], values[cats[b]]
		if va != vb {
			return va < vb
		}
		return cats[a] < cats[b]
	})
}
