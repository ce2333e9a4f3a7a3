package feature

import (
	"fmt"

	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
)

// 特征工程派生出的列名
const (
	ColumnHourOfDay       = "hour_of_day"
	ColumnDayOfWeek       = "day_of_week"
	ColumnSessionDuration = "session_duration"
	ColumnTxnTimestamp    = "txn_timestamp"
	ColumnLoginTime       = "loginTime"
	DefaultLabelColumn    = "fraud"
)

// Contract 是列契约：必需的数值列、类别列（均有序）以及标签列。
//
// FeatureColumns() = Numerical ++ Categorical，决定输入列顺序。
// 训练与推理必须使用同一份契约。
type Contract struct {
	Numerical   []string `yaml:"numerical" json:"numerical" mapstructure:"numerical"`
	Categorical []string `yaml:"categorical" json:"categorical" mapstructure:"categorical"`
	Label       string   `yaml:"label" json:"label" mapstructure:"label"`
}

// DefaultContract 返回交易反欺诈场景的默认列契约
func DefaultContract() Contract {
	return Contract{
		Numerical: []string{
			"amount",
			"customer_age",
			"minute_of_day",
			"to_acc_volume",
			ColumnSessionDuration,
		},
		Categorical: []string{ColumnHourOfDay, ColumnDayOfWeek},
		Label:       DefaultLabelColumn,
	}
}

// FeatureColumns 返回 Numerical ++ Categorical（新切片）
func (c Contract) FeatureColumns() []string {
	cols := make([]string, 0, len(c.Numerical)+len(c.Categorical))
	cols = append(cols, c.Numerical...)
	cols = append(cols, c.Categorical...)
	return cols
}

// Schema 返回契约对应的 schema 清单
func (c Contract) Schema() Schema {
	return Schema{
		NumCols: append([]string(nil), c.Numerical...),
		AllCols: c.FeatureColumns(),
	}
}

// Validate 检查契约本身：列表非空、列名唯一、标签列不是特征列。
func (c Contract) Validate() error {
	if len(c.Numerical) == 0 {
		return invalidInput("列契约缺少数值列")
	}
	if len(c.Categorical) == 0 {
		return invalidInput("列契约缺少类别列")
	}
	if c.Label == "" {
		return invalidInput("列契约缺少标签列")
	}
	seen := make(map[string]struct{})
	for _, col := range c.FeatureColumns() {
		if col == "" {
			return invalidInput("列契约包含空列名")
		}
		if _, dup := seen[col]; dup {
			return invalidInput(fmt.Sprintf("列契约中列 %s 重复", col))
		}
		seen[col] = struct{}{}
	}
	if _, clash := seen[c.Label]; clash {
		return invalidInput(fmt.Sprintf("标签列 %s 不能同时是特征列", c.Label))
	}
	return nil
}

// ValidateTable 检查特征工程之后的表是否满足契约。
//
// 任一必需列缺失时返回 *core.MissingColumnsError，按契约顺序列出全部缺失列；
// 数值列必须已经是 KindFloat。必须在任何 fit 之前调用。
func (c Contract) ValidateTable(t *dataset.Table) error {
	return c.validate(t, c.FeatureColumns())
}

// ValidateLabeledTable 与 ValidateTable 相同，但同时要求标签列存在（训练路径）。
func (c Contract) ValidateLabeledTable(t *dataset.Table) error {
	return c.validate(t, append(c.FeatureColumns(), c.Label))
}

func (c Contract) validate(t *dataset.Table, required []string) error {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &core.MissingColumnsError{Columns: missing}
	}
	for _, name := range c.Numerical {
		col, _ := t.Column(name)
		if col.Kind != dataset.KindFloat {
			return invalidInput(fmt.Sprintf("数值列 %s 的类型为 %s，应为 float", name, col.Kind))
		}
	}
	return nil
}

func invalidInput(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, msg)
}
