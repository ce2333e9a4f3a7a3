package feature

import (
	"fmt"
	"slices"

	"github.com/rushteam/txnprep/core"
)

// Schema 是列契约的持久化描述，对应 schema.json
type Schema struct {
	// NumCols 数值列（按顺序）
	NumCols []string `json:"num_cols"`
	// AllCols 全部输入特征列 = NumCols ++ 类别列（按顺序）
	AllCols []string `json:"all_cols"`
}

// CompatibleWith 检查 schema 是否与契约一致（列名与顺序都必须相同）
func (s Schema) CompatibleWith(c Contract) error {
	if !slices.Equal(s.NumCols, c.Numerical) {
		return incompatible(fmt.Sprintf("schema num_cols %v 与契约数值列 %v 不一致", s.NumCols, c.Numerical))
	}
	if !slices.Equal(s.AllCols, c.FeatureColumns()) {
		return incompatible(fmt.Sprintf("schema all_cols %v 与契约特征列 %v 不一致", s.AllCols, c.FeatureColumns()))
	}
	return nil
}

// NumericParams 单个数值列的拟合参数：中位数（填充）+ 均值/标准差（标准化）
type NumericParams struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// NumericState 是数值变换（Imputer ∘ Scaler）的持久化状态，对应 preprocessor.json
type NumericState struct {
	Columns []NumericParams `json:"columns"`
}

// NewNumericState 从已 fit 的填充器与标准化器导出状态
func NewNumericState(im *Imputer, sc *Scaler) (NumericState, error) {
	if !im.fitted || !sc.fitted {
		return NumericState{}, ErrNotFitted
	}
	if !slices.Equal(im.columns, sc.columns) {
		return NumericState{}, invalidInput(fmt.Sprintf("填充器列 %v 与标准化器列 %v 不一致", im.columns, sc.columns))
	}
	state := NumericState{Columns: make([]NumericParams, len(im.columns))}
	for j, name := range im.columns {
		state.Columns[j] = NumericParams{
			Name:   name,
			Median: im.medians[j],
			Mean:   sc.means[j],
			Std:    sc.stds[j],
		}
	}
	return state, nil
}

// Names 返回状态中的列名
func (s NumericState) Names() []string {
	names := make([]string, len(s.Columns))
	for j, p := range s.Columns {
		names[j] = p.Name
	}
	return names
}

// Restore 恢复出只读（已 fit）的填充器与标准化器
func (s NumericState) Restore() (*Imputer, *Scaler, error) {
	names := s.Names()
	medians := make([]float64, len(s.Columns))
	means := make([]float64, len(s.Columns))
	stds := make([]float64, len(s.Columns))
	for j, p := range s.Columns {
		medians[j], means[j], stds[j] = p.Median, p.Mean, p.Std
	}
	im, err := NewFittedImputer(names, medians)
	if err != nil {
		return nil, nil, err
	}
	sc, err := NewFittedScaler(names, means, stds)
	if err != nil {
		return nil, nil, err
	}
	return im, sc, nil
}

// CategoryColumn 单个类别列的有序类别
type CategoryColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// EncoderState 是 One-Hot 编码器的持久化状态，对应 encoder.json
type EncoderState struct {
	Columns       []CategoryColumn `json:"columns"`
	HandleUnknown string           `json:"handle_unknown"`
}

// State 导出编码器状态
func (e *OneHotEncoder) State() (EncoderState, error) {
	if !e.fitted {
		return EncoderState{}, ErrNotFitted
	}
	state := EncoderState{
		Columns:       make([]CategoryColumn, len(e.columns)),
		HandleUnknown: HandleUnknownIgnore,
	}
	for j, name := range e.columns {
		state.Columns[j] = CategoryColumn{Name: name, Categories: append([]string(nil), e.categories[j]...)}
	}
	return state, nil
}

// Names 返回状态中的列名
func (s EncoderState) Names() []string {
	names := make([]string, len(s.Columns))
	for j, c := range s.Columns {
		names[j] = c.Name
	}
	return names
}

// Restore 恢复出只读（已 fit）的编码器
func (s EncoderState) Restore() (*OneHotEncoder, error) {
	if s.HandleUnknown != "" && s.HandleUnknown != HandleUnknownIgnore {
		return nil, incompatible(fmt.Sprintf("不支持的 handle_unknown 策略: %s", s.HandleUnknown))
	}
	categories := make([][]string, len(s.Columns))
	for j, c := range s.Columns {
		categories[j] = c.Categories
	}
	return NewFittedOneHotEncoder(s.Names(), categories)
}

// OutputColumns 返回最终特征列名：数值列名 ++ 编码器展开的类别名
func OutputColumns(numerical []string, enc *OneHotEncoder) []string {
	names := append([]string(nil), numerical...)
	return append(names, enc.FeatureNames()...)
}

func incompatible(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidArtifact, msg)
}
