package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Matrix 是行优先存储的稠密 float64 矩阵，允许 0 行。
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix 创建 rows×cols 的零矩阵
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("feature: 非法矩阵维度 %d×%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewMatrixFromRows 用二维切片构建矩阵，每行长度必须相同
func NewMatrixFromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, invalidInput(fmt.Sprintf("第 %d 行长度 %d 与第一行长度 %d 不一致", i, len(row), cols))
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// Dims 返回 (行数, 列数)
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// At 返回 (i, j) 处的值
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Set 设置 (i, j) 处的值
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Row 返回第 i 行的拷贝
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

// Col 返回第 j 列的拷贝
func (m *Matrix) Col(j int) []float64 {
	col := make([]float64, m.rows)
	for i := range col {
		col[i] = m.data[i*m.cols+j]
	}
	return col
}

// Rows 以二维切片形式返回所有行（拷贝）
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// HStack 按列拼接多个矩阵，所有矩阵行数必须相同。
func HStack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return NewMatrix(0, 0), nil
	}
	rows := ms[0].rows
	cols := 0
	for k, m := range ms {
		if m.rows != rows {
			return nil, invalidInput(fmt.Sprintf("第 %d 个矩阵有 %d 行，期望 %d 行", k, m.rows, rows))
		}
		cols += m.cols
	}
	out := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		offset := i * cols
		for _, m := range ms {
			copy(out.data[offset:offset+m.cols], m.data[i*m.cols:(i+1)*m.cols])
			offset += m.cols
		}
	}
	return out, nil
}

// Assemble 是矩阵组装器：按 {数值列, one-hot 列, 标签} 的固定顺序横向拼接一个分区的输出矩阵。
//
// 三者之间的行对应关系由调用方保证，这里只校验行数一致。
func Assemble(num, cat *Matrix, labels []float64) (*Matrix, error) {
	labelCol := &Matrix{rows: len(labels), cols: 1, data: append([]float64(nil), labels...)}
	return HStack(num, cat, labelCol)
}

// WriteCSV 以 CSV 格式写出矩阵；header 非空时先写表头，长度必须等于列数。
func (m *Matrix) WriteCSV(w io.Writer, header []string) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if len(header) != m.cols {
			return invalidInput(fmt.Sprintf("表头有 %d 列，矩阵有 %d 列", len(header), m.cols))
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	record := make([]string, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
