package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/txnprep/core"
)

// ReadCSV 从带表头的 CSV 读取原始记录表，所有列均为 KindString。
//
// 字段数少于表头的行用空字符串补齐（视为缺失），多于表头的行返回错误。
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "CSV 缺少表头")
	}
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 表头失败: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("CSV 表头存在重复列: %s", h))
		}
		seen[h] = struct{}{}
	}

	columns := make([][]string, len(header))
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 第 %d 行失败: %w", line+1, err)
		}
		line++
		if len(record) > len(header) {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("CSV 第 %d 行有 %d 个字段，表头只有 %d 列", line, len(record), len(header)))
		}
		for j := range header {
			var v string
			if j < len(record) {
				v = record[j]
			}
			columns[j] = append(columns[j], v)
		}
	}

	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	t := NewTable(rows)
	for j, name := range header {
		values := columns[j]
		if values == nil {
			values = []string{}
		}
		if err := t.PutStrings(name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile 打开并读取 CSV 文件。文件不可读时返回携带路径的 IO_ERROR。
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		code := core.ErrorCodeIO
		if errors.Is(err, os.ErrNotExist) {
			code = core.ErrorCodeNotFound
		}
		return nil, core.WrapDomainError(core.ModuleDataset, code, "打开数据文件失败", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeIO, "解析数据文件失败", path, err)
	}
	return t, nil
}
