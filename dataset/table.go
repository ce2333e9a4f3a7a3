// Package dataset 提供带列类型声明的列式数据表，用于承载原始交易记录与特征工程之后的记录。
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rushteam/txnprep/core"
)

// Kind 是列的元素类型
type Kind int

const (
	KindString Kind = iota // 原始文本（CSV 单元格）
	KindFloat              // float64，NaN 表示缺失
	KindInt                // int，无缺失
	KindTime               // 可空时间
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NullTime 是可空时间值，Valid=false 表示缺失
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Column 是一列数据。只有与 Kind 对应的切片有值。
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Floats  []float64
	Ints    []int
	Times   []NullTime
}

// Len 返回列的行数
func (c *Column) Len() int {
	switch c.Kind {
	case KindString:
		return len(c.Strings)
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	case KindTime:
		return len(c.Times)
	default:
		return 0
	}
}

// Text 返回第 i 行的文本表示，供类别编码使用。
// Float 列使用最短往返格式，缺失值为 "NaN"；Time 列缺失值为空字符串。
func (c *Column) Text(i int) string {
	switch c.Kind {
	case KindString:
		return c.Strings[i]
	case KindFloat:
		v := c.Floats[i]
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case KindInt:
		return strconv.Itoa(c.Ints[i])
	case KindTime:
		if !c.Times[i].Valid {
			return ""
		}
		return c.Times[i].Time.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Table 是按列存储的数据表，列顺序即插入顺序。
type Table struct {
	rows  int
	cols  []*Column
	index map[string]int
}

// NewTable 创建一个 rows 行、暂无列的数据表
func NewTable(rows int) *Table {
	return &Table{
		rows:  rows,
		index: make(map[string]int),
	}
}

// Rows 返回行数
func (t *Table) Rows() int { return t.rows }

// Names 返回按顺序排列的列名
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Has 判断列是否存在
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column 按列名取列
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Put 添加或替换一列；替换时保留原来的位置。
// 列长度必须与表的行数一致。
func (t *Table) Put(col *Column) error {
	if col.Len() != t.rows {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("列 %s 的长度 %d 与表行数 %d 不一致", col.Name, col.Len(), t.rows))
	}
	if i, ok := t.index[col.Name]; ok {
		t.cols[i] = col
		return nil
	}
	t.index[col.Name] = len(t.cols)
	t.cols = append(t.cols, col)
	return nil
}

// PutStrings 添加一个文本列
func (t *Table) PutStrings(name string, values []string) error {
	return t.Put(&Column{Name: name, Kind: KindString, Strings: values})
}

// PutFloats 添加一个浮点列
func (t *Table) PutFloats(name string, values []float64) error {
	return t.Put(&Column{Name: name, Kind: KindFloat, Floats: values})
}

// PutInts 添加一个整数列
func (t *Table) PutInts(name string, values []int) error {
	return t.Put(&Column{Name: name, Kind: KindInt, Ints: values})
}

// PutTimes 添加一个时间列
func (t *Table) PutTimes(name string, values []NullTime) error {
	return t.Put(&Column{Name: name, Kind: KindTime, Times: values})
}

// Clone 返回一个浅拷贝：列切片共享，但对新表的 Put 不影响原表。
func (t *Table) Clone() *Table {
	out := &Table{
		rows:  t.rows,
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.index)),
	}
	copy(out.cols, t.cols)
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// FromRecords 用一组 map 记录构建文本表，列顺序为 columns。
// 记录中缺少的字段记为空字符串（缺失）。
func FromRecords(columns []string, records []map[string]string) (*Table, error) {
	t := NewTable(len(records))
	for _, name := range columns {
		values := make([]string, len(records))
		for i, rec := range records {
			values[i] = rec[name]
		}
		if err := t.PutStrings(name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}
