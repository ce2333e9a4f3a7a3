package feature

import (
	"math"
	"time"

	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/pkg/conv"
)

// EpochSentinel 是历史付款日期缺失时的填充值
const EpochSentinel = "1970-01-01"

// HistoryDateColumns 是可选的历史付款日期列，缺失值在解析前填充为 EpochSentinel
var HistoryDateColumns = []string{"lut_first_paid_date", "lut_last_paid_date"}

// DateColumns 是需要宽松解析为时间的列（存在时才处理）
var DateColumns = []string{
	"date",
	ColumnLoginTime,
	"lut_first_paid_date",
	"lut_last_paid_date",
	ColumnTxnTimestamp,
}

// LabelRule 将数值化后的原始标签映射为最终标签。
// 未配置时使用向零截断。
type LabelRule interface {
	Apply(label float64) (int, error)
}

// Engineer 是特征工程器：从原始记录派生时间/行为特征，并负责类型转换之前的全部缺失值默认处理。
//
// 对缺失或格式错误的可选字段从不报错：
//   - 历史付款日期缺失 → 1970-01-01
//   - 时间无法解析 → 空值
//   - hour_of_day / day_of_week 来自 txn_timestamp，空值或没有该列时为 0
//   - session_duration = txn_timestamp - loginTime（秒），任一缺失为 0，不截断负值
//   - 数值列无法解析 → NaN，由之后的中位数填充处理
//   - 标签缺失 → 0，然后向零截断为整数
type Engineer struct {
	contract  Contract
	labelRule LabelRule
}

// EngineerOption 配置 Engineer
type EngineerOption func(*Engineer)

// WithLabelRule 设置标签映射规则
func WithLabelRule(rule LabelRule) EngineerOption {
	return func(e *Engineer) {
		e.labelRule = rule
	}
}

// NewEngineer 创建特征工程器
func NewEngineer(contract Contract, opts ...EngineerOption) *Engineer {
	e := &Engineer{contract: contract}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engineer 对一张原始表做特征工程，返回新表（原表不被修改）和降级统计。
//
// 返回的 error 只来自标签规则求值失败或列长度不一致，格式错误的数据不会产生 error。
func (e *Engineer) Engineer(raw *dataset.Table) (*dataset.Table, *CoercionStats, error) {
	t := raw.Clone()
	rows := t.Rows()
	stats := NewCoercionStats(rows)

	for _, name := range HistoryDateColumns {
		col, ok := t.Column(name)
		if !ok || col.Kind != dataset.KindString {
			continue
		}
		filled := make([]string, rows)
		for i, v := range col.Strings {
			if conv.IsMissing(v) {
				filled[i] = EpochSentinel
				stats.addMissing(name)
			} else {
				filled[i] = v
			}
		}
		if err := t.PutStrings(name, filled); err != nil {
			return nil, nil, err
		}
	}

	for _, name := range DateColumns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		if err := t.PutTimes(name, timesOf(col, stats)); err != nil {
			return nil, nil, err
		}
	}

	hours := make([]int, rows)
	days := make([]int, rows)
	txn, hasTxn := t.Column(ColumnTxnTimestamp)
	if hasTxn {
		for i, ts := range txn.Times {
			if !ts.Valid {
				continue
			}
			hours[i] = ts.Time.Hour()
			days[i] = mondayFirst(ts.Time.Weekday())
		}
	}
	if err := t.PutInts(ColumnHourOfDay, hours); err != nil {
		return nil, nil, err
	}
	if err := t.PutInts(ColumnDayOfWeek, days); err != nil {
		return nil, nil, err
	}

	durations := make([]float64, rows)
	login, hasLogin := t.Column(ColumnLoginTime)
	if hasTxn && hasLogin {
		for i := range durations {
			if txn.Times[i].Valid && login.Times[i].Valid {
				durations[i] = txn.Times[i].Time.Sub(login.Times[i].Time).Seconds()
			}
		}
	}
	if err := t.PutFloats(ColumnSessionDuration, durations); err != nil {
		return nil, nil, err
	}

	for _, name := range e.contract.Numerical {
		if name == ColumnSessionDuration {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		if err := t.PutFloats(name, floatsOf(col, stats, conv.ParseFloat)); err != nil {
			return nil, nil, err
		}
	}

	if col, ok := t.Column(e.contract.Label); ok {
		labels, err := e.labels(col, stats)
		if err != nil {
			return nil, nil, err
		}
		if err := t.PutInts(e.contract.Label, labels); err != nil {
			return nil, nil, err
		}
	}

	return t, stats, nil
}

func (e *Engineer) labels(col *dataset.Column, stats *CoercionStats) ([]int, error) {
	values := floatsOf(col, stats, conv.ParseLabel)
	labels := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		if e.labelRule != nil {
			label, err := e.labelRule.Apply(v)
			if err != nil {
				return nil, err
			}
			labels[i] = label
			continue
		}
		labels[i] = int(math.Trunc(v))
	}
	return labels, nil
}

// mondayFirst 将 time.Weekday（周日=0）转换为周一=0 … 周日=6
func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func timesOf(col *dataset.Column, stats *CoercionStats) []dataset.NullTime {
	if col.Kind == dataset.KindTime {
		return col.Times
	}
	out := make([]dataset.NullTime, col.Len())
	for i := range out {
		if col.Kind != dataset.KindString {
			stats.addInvalid(col.Name)
			continue
		}
		s := col.Strings[i]
		if conv.IsMissing(s) {
			stats.addMissing(col.Name)
			continue
		}
		if ts, ok := conv.ParseTime(s); ok {
			out[i] = dataset.NullTime{Time: ts, Valid: true}
		} else {
			stats.addInvalid(col.Name)
		}
	}
	return out
}

func floatsOf(col *dataset.Column, stats *CoercionStats, parse func(string) (float64, bool)) []float64 {
	out := make([]float64, col.Len())
	switch col.Kind {
	case dataset.KindFloat:
		for i, v := range col.Floats {
			if math.IsNaN(v) {
				stats.addMissing(col.Name)
			}
			out[i] = v
		}
	case dataset.KindInt:
		for i, v := range col.Ints {
			out[i] = float64(v)
		}
	case dataset.KindString:
		for i, s := range col.Strings {
			if conv.IsMissing(s) {
				stats.addMissing(col.Name)
				out[i] = math.NaN()
				continue
			}
			f, ok := parse(s)
			if !ok {
				stats.addInvalid(col.Name)
			}
			out[i] = f
		}
	default:
		for i := range out {
			stats.addInvalid(col.Name)
			out[i] = math.NaN()
		}
	}
	return out
}
