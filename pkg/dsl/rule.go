package dsl

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境：唯一变量 label 为 double
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("label", cel.DoubleType),
		cel.CrossTypeNumericComparisons(true),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// LabelRule 是标签映射规则，使用 CEL (Common Expression Language) 表达式实现。
//
// 表达式中 label 为数值化后的原始标签（缺失为 0），结果可以是：
//   - bool：true → 1，false → 0
//   - int：原样使用
//   - double：向零截断
//
// 示例：
//   - `label > 0.5` → 大于 0.5 视为欺诈
//   - `label >= 1.0 ? 1 : 0`
//   - `int(label)`
type LabelRule struct {
	expr string
	prg  cel.Program
}

// NewLabelRule 编译表达式。表达式只编译一次，之后 Apply 可并发调用。
func NewLabelRule(expr string) (*LabelRule, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env error: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	switch ast.OutputType().Kind() {
	case types.BoolKind, types.IntKind, types.DoubleKind, types.DynKind:
	default:
		return nil, fmt.Errorf("label rule must return bool, int or double, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &LabelRule{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (r *LabelRule) String() string { return r.expr }

// Apply 对单个标签值求值
func (r *LabelRule) Apply(label float64) (int, error) {
	out, _, err := r.prg.Eval(map[string]any{"label": types.Double(label)})
	if err != nil {
		return 0, fmt.Errorf("eval error: %w", err)
	}
	switch v := out.Value().(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("label rule %q produced %v", r.expr, v)
		}
		return int(math.Trunc(v)), nil
	default:
		return 0, fmt.Errorf("label rule must return bool, int or double, got %T", v)
	}
}
