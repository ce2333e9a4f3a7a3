package feature

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
)

// 估计器状态错误
var (
	// ErrNotFitted 表示在 Fit 之前调用了 Transform
	ErrNotFitted = core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFitted, "feature: estimator is not fitted")

	// ErrAlreadyFitted 表示同一个估计器被 Fit 了两次
	ErrAlreadyFitted = core.NewDomainError(core.ModuleFeature, core.ErrorCodeAlreadyFitted, "feature: estimator is already fitted")
)

// scaleEpsilon 以下的标准差视为 0，缩放因子取 1
const scaleEpsilon = 10 * 2.220446049250313e-16

// NumericMatrix 按 columns 顺序从表中取出数值列组成矩阵，NaN 保留为缺失标记。
func NumericMatrix(t *dataset.Table, columns []string) (*Matrix, error) {
	m := NewMatrix(t.Rows(), len(columns))
	var missing []string
	for j, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if col.Kind != dataset.KindFloat {
			return nil, invalidInput(fmt.Sprintf("数值列 %s 的类型为 %s，应为 float", name, col.Kind))
		}
		for i, v := range col.Floats {
			m.Set(i, j, v)
		}
	}
	if len(missing) > 0 {
		return nil, &core.MissingColumnsError{Columns: missing}
	}
	return m, nil
}

// Imputer 是按列中位数填充缺失值（NaN）的估计器。
//
// Fit 只能在训练集上调用一次；Transform 只使用 Fit 得到的中位数，从不根据输入重新估计。
type Imputer struct {
	columns []string
	medians []float64
	fitted  bool
}

// NewImputer 创建未 fit 的中位数填充器
func NewImputer(columns []string) *Imputer {
	return &Imputer{columns: append([]string(nil), columns...)}
}

// NewFittedImputer 用已持久化的中位数恢复填充器
func NewFittedImputer(columns []string, medians []float64) (*Imputer, error) {
	if len(columns) != len(medians) {
		return nil, invalidInput(fmt.Sprintf("中位数个数 %d 与列数 %d 不一致", len(medians), len(columns)))
	}
	return &Imputer{
		columns: append([]string(nil), columns...),
		medians: append([]float64(nil), medians...),
		fitted:  true,
	}, nil
}

// Columns 返回填充器对应的列
func (im *Imputer) Columns() []string { return append([]string(nil), im.columns...) }

// Medians 返回 fit 得到的中位数（拷贝）
func (im *Imputer) Medians() []float64 { return append([]float64(nil), im.medians...) }

// Fit 计算每列非缺失值的中位数。某列没有任何观测值时中位数取 0。
func (im *Imputer) Fit(x *Matrix) error {
	if im.fitted {
		return ErrAlreadyFitted
	}
	if err := checkFitInput(x, len(im.columns)); err != nil {
		return err
	}
	medians := make([]float64, x.cols)
	for j := range medians {
		medians[j] = median(x.Col(j))
	}
	im.medians = medians
	im.fitted = true
	return nil
}

// Transform 用 fit 得到的中位数替换 NaN，返回新矩阵
func (im *Imputer) Transform(x *Matrix) (*Matrix, error) {
	if !im.fitted {
		return nil, ErrNotFitted
	}
	if err := checkWidth(x, len(im.columns)); err != nil {
		return nil, err
	}
	out := NewMatrix(x.rows, x.cols)
	for i := 0; i < x.rows; i++ {
		for j := 0; j < x.cols; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) {
				v = im.medians[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform 先 Fit 再 Transform 同一份数据
func (im *Imputer) FitTransform(x *Matrix) (*Matrix, error) {
	if err := im.Fit(x); err != nil {
		return nil, err
	}
	return im.Transform(x)
}

// Scaler 是 Z-score 标准化估计器
// 公式: z = (x - μ) / σ，μ 与 σ（总体标准差）只在训练集上计算
// σ 为 0 时缩放因子取 1，输出 x - μ
type Scaler struct {
	columns []string
	means   []float64
	stds    []float64
	fitted  bool
}

// NewScaler 创建未 fit 的标准化器
func NewScaler(columns []string) *Scaler {
	return &Scaler{columns: append([]string(nil), columns...)}
}

// NewFittedScaler 用已持久化的均值/标准差恢复标准化器
func NewFittedScaler(columns []string, means, stds []float64) (*Scaler, error) {
	if len(columns) != len(means) || len(columns) != len(stds) {
		return nil, invalidInput(fmt.Sprintf("均值 %d 个、标准差 %d 个，与列数 %d 不一致", len(means), len(stds), len(columns)))
	}
	return &Scaler{
		columns: append([]string(nil), columns...),
		means:   append([]float64(nil), means...),
		stds:    append([]float64(nil), stds...),
		fitted:  true,
	}, nil
}

// Columns 返回标准化器对应的列
func (s *Scaler) Columns() []string { return append([]string(nil), s.columns...) }

// Means 返回每列均值（拷贝）
func (s *Scaler) Means() []float64 { return append([]float64(nil), s.means...) }

// Stds 返回每列总体标准差（拷贝）
func (s *Scaler) Stds() []float64 { return append([]float64(nil), s.stds...) }

// Fit 计算每列的均值与总体标准差（忽略 NaN）
func (s *Scaler) Fit(x *Matrix) error {
	if s.fitted {
		return ErrAlreadyFitted
	}
	if err := checkFitInput(x, len(s.columns)); err != nil {
		return err
	}
	means := make([]float64, x.cols)
	stds := make([]float64, x.cols)
	for j := range means {
		values := observed(x.Col(j))
		if len(values) == 0 {
			continue
		}
		mean, variance := stat.PopMeanVariance(values, nil)
		means[j] = mean
		stds[j] = math.Sqrt(variance)
	}
	s.means = means
	s.stds = stds
	s.fitted = true
	return nil
}

// Transform 对每个值做 (x - μ) / σ，返回新矩阵；NaN 原样保留
func (s *Scaler) Transform(x *Matrix) (*Matrix, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	if err := checkWidth(x, len(s.columns)); err != nil {
		return nil, err
	}
	out := NewMatrix(x.rows, x.cols)
	for i := 0; i < x.rows; i++ {
		for j := 0; j < x.cols; j++ {
			out.Set(i, j, s.NormalizeValue(j, x.At(i, j)))
		}
	}
	return out, nil
}

// NormalizeValue 标准化第 j 列的单个值
func (s *Scaler) NormalizeValue(j int, value float64) float64 {
	scale := s.stds[j]
	if scale < scaleEpsilon {
		scale = 1
	}
	return (value - s.means[j]) / scale
}

// FitTransform 先 Fit 再 Transform 同一份数据
func (s *Scaler) FitTransform(x *Matrix) (*Matrix, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

func checkFitInput(x *Matrix, width int) error {
	if x.rows == 0 {
		return invalidInput("训练集为空，无法 fit")
	}
	return checkWidth(x, width)
}

func checkWidth(x *Matrix, width int) error {
	if x.cols != width {
		return invalidInput(fmt.Sprintf("输入有 %d 列，估计器需要 %d 列", x.cols, width))
	}
	return nil
}

func observed(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// median 计算非 NaN 值的中位数，偶数个时取中间两个数的平均值；没有观测值时返回 0
func median(values []float64) float64 {
	sorted := observed(values)
	if len(sorted) == 0 {
		return 0
	}
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	// 先各自减半再相加，接近 MaxFloat64 时不会溢出
	return sorted[mid-1]/2 + sorted[mid]/2
}
