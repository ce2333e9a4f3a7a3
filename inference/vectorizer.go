// Package inference 是推理侧的读路径：用已持久化的产物把单条记录转换为特征向量，
// 列顺序与训练时的 feature_columns 完全一致。
package inference

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/pkg/conv"
)

// Vectorizer 持有恢复出的估计器，只读，可并发使用
type Vectorizer struct {
	contract feature.Contract
	imputer  *feature.Imputer
	scaler   *feature.Scaler
	encoder  *feature.OneHotEncoder
	engineer *feature.Engineer
	columns  []string
	known    []map[string]struct{}
}

// NewVectorizer 从产物恢复估计器
func NewVectorizer(b *artifact.Bundle, opts ...feature.EngineerOption) (*Vectorizer, error) {
	contract := b.Contract(feature.DefaultLabelColumn)
	if err := b.Validate(contract); err != nil {
		return nil, err
	}
	im, sc, enc, err := b.Restore()
	if err != nil {
		return nil, err
	}
	known := make([]map[string]struct{}, len(contract.Categorical))
	for j, cats := range enc.Categories() {
		known[j] = make(map[string]struct{}, len(cats))
		for _, c := range cats {
			known[j][c] = struct{}{}
		}
	}
	return &Vectorizer{
		known:    known,
		contract: contract,
		imputer:  im,
		scaler:   sc,
		encoder:  enc,
		engineer: feature.NewEngineer(contract, opts...),
		columns:  append([]string(nil), b.FeatureColumns...),
	}, nil
}

// FeatureColumns 返回输出向量的列名
func (v *Vectorizer) FeatureColumns() []string { return append([]string(nil), v.columns...) }

// Vector 编码一条已做过特征工程的记录。
//
// 数值列宽松解析，缺失或无法解析时使用训练中位数；类别值需与训练时的文本一致
// （整数类别请使用十进制文本，如 "13"），未知类别编码为全 0。
func (v *Vectorizer) Vector(values map[string]string) ([]float64, error) {
	var missing []string
	for _, col := range v.contract.FeatureColumns() {
		if _, ok := values[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &core.MissingColumnsError{Columns: missing}
	}

	out := make([]float64, 0, len(v.columns))
	medians := v.imputer.Medians()
	for j, col := range v.contract.Numerical {
		x, ok := conv.ParseFloat(values[col])
		if !ok {
			x = medians[j]
		}
		out = append(out, v.scaler.NormalizeValue(j, x))
	}

	cats := make([]string, len(v.contract.Categorical))
	for j, col := range v.contract.Categorical {
		cats[j] = v.category(j, values[col])
	}
	encoded, err := v.encoder.EncodeValues(cats)
	if err != nil {
		return nil, err
	}
	out = append(out, encoded...)

	if len(out) != len(v.columns) {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInternalError,
			fmt.Sprintf("vector has %d values, feature_columns has %d", len(out), len(v.columns)))
	}
	return out, nil
}

// VectorFromRaw 先对一条原始记录做特征工程（时间特征、会话时长等），再编码
func (v *Vectorizer) VectorFromRaw(raw map[string]string) ([]float64, error) {
	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	t, err := dataset.FromRecords(names, []map[string]string{raw})
	if err != nil {
		return nil, err
	}
	engineered, _, err := v.engineer.Engineer(t)
	if err != nil {
		return nil, err
	}
	if err := v.contract.ValidateTable(engineered); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(v.contract.FeatureColumns()))
	for _, name := range v.contract.FeatureColumns() {
		col, _ := engineered.Column(name)
		values[name] = col.Text(0)
	}
	return v.Vector(values)
}

// category 返回第 j 个类别列用于编码的文本：先按原文匹配，
// 不匹配时把 "13.0"、" 13 " 归一为整数文本 "13" 再匹配
func (v *Vectorizer) category(j int, s string) string {
	if _, ok := v.known[j][s]; ok {
		return s
	}
	f, ok := conv.ParseFloat(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
