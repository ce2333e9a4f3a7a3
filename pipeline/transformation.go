package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/config"
	_ "github.com/rushteam/txnprep/config/builders"
	"github.com/rushteam/txnprep/core"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/pkg/dsl"
)

// Result 是一次运行的输出
type Result struct {
	RunID string
	// Train/Test 为组装后的矩阵：数值列 ++ one-hot 列 ++ 标签
	Train          *feature.Matrix
	Test           *feature.Matrix
	FeatureColumns []string
	Locators       artifact.Locators
	// ScalerLocator 数值变换产物（preprocessor）的位置
	ScalerLocator string
	TrainStats    *feature.CoercionStats
	TestStats     *feature.CoercionStats
}

// Header 返回输出矩阵的列名：FeatureColumns ++ 标签列
func (r *Result) Header(label string) []string {
	return append(append([]string(nil), r.FeatureColumns...), label)
}

// Option 配置 Transformation
type Option func(*Transformation)

// WithLogger 设置日志，默认 zap.NewNop()
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transformation) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithStore 使用给定的存储后端（覆盖配置中的 store），调用方负责关闭
func WithStore(s core.Store) Option {
	return func(t *Transformation) {
		t.backend = s
	}
}

// WithRegisterer 在 reg 上注册流水线指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(t *Transformation) {
		t.registerer = reg
	}
}

// Transformation 是训练侧的预处理流水线：
// load → engineer → validate → fit → transform → assemble → persist。
//
// 每次 Run 新建估计器，多次 Run 之间没有共享的可变状态；
// 并发运行需使用不同的产物路径。
type Transformation struct {
	cfg        Config
	logger     *zap.Logger
	backend    core.Store
	ownsStore  bool
	registerer prometheus.Registerer
	metrics    *Metrics
	engineer   *feature.Engineer
	artifacts  *artifact.Store
}

// New 校验配置、编译标签规则并准备存储后端
func New(cfg Config, opts ...Option) (*Transformation, error) {
	t := &Transformation{
		cfg:    cfg.WithDefaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "invalid pipeline config", "", err)
	}

	var engineerOpts []feature.EngineerOption
	if t.cfg.LabelRule != "" {
		rule, err := dsl.NewLabelRule(t.cfg.LabelRule)
		if err != nil {
			return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "invalid label rule", "", err)
		}
		engineerOpts = append(engineerOpts, feature.WithLabelRule(rule))
	}
	t.engineer = feature.NewEngineer(t.cfg.Contract, engineerOpts...)

	metrics, err := NewMetrics(t.registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	t.metrics = metrics

	if t.backend == nil {
		s, err := config.BuildStore(context.Background(), t.cfg.Store)
		if err != nil {
			return nil, err
		}
		t.backend, t.ownsStore = s, true
	}
	t.artifacts = artifact.NewStore(t.backend, t.cfg.Artifacts, t.cfg.Contract)
	return t, nil
}

// Config 返回生效的配置
func (t *Transformation) Config() Config { return t.cfg }

// Metrics 返回流水线指标
func (t *Transformation) Metrics() *Metrics { return t.metrics }

// Close 关闭由配置创建的存储后端
func (t *Transformation) Close() error {
	if t.ownsStore {
		return t.backend.Close()
	}
	return nil
}

// Run 读取训练/测试 CSV 并执行整条流水线
func (t *Transformation) Run(ctx context.Context, trainPath, testPath string) (*Result, error) {
	st := &State{RunID: uuid.NewString()}
	st.train.path, st.test.path = trainPath, testPath
	return t.run(ctx, st)
}

// RunTables 使用已读入的原始表执行流水线（跳过 CSV 读取），输入表不会被修改
func (t *Transformation) RunTables(ctx context.Context, train, test *dataset.Table) (*Result, error) {
	if train == nil || test == nil {
		return nil, core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "train and test tables are required")
	}
	st := &State{RunID: uuid.NewString()}
	st.train.raw, st.test.raw = train, test
	return t.run(ctx, st)
}

func (t *Transformation) run(ctx context.Context, st *State) (*Result, error) {
	logger := t.logger.With(zap.String("run_id", st.RunID), zap.String("pipeline", t.cfg.Name))
	logger.Info("transformation started",
		zap.String("train_path", st.train.path),
		zap.String("test_path", st.test.path),
		zap.String("store", t.backend.Name()),
	)
	start := time.Now()

	p := t.pipeline(logger)
	if err := p.Run(ctx, st); err != nil {
		t.metrics.Runs.WithLabelValues("failure").Inc()
		logger.Error("transformation failed",
			zap.String("stage", core.FailedStage(err)),
			zap.Strings("missing_columns", core.GetMissingColumns(err)),
			zap.Error(err),
		)
		return nil, err
	}
	t.metrics.Runs.WithLabelValues("success").Inc()

	trainRows, trainCols := st.train.out.Dims()
	testRows, _ := st.test.out.Dims()
	logger.Info("transformation finished",
		zap.Int("train_rows", trainRows),
		zap.Int("test_rows", testRows),
		zap.Int("columns", trainCols),
		zap.String("preprocessor", st.locators.Preprocessor),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		RunID:          st.RunID,
		Train:          st.train.out,
		Test:           st.test.out,
		FeatureColumns: append([]string(nil), st.bundle.FeatureColumns...),
		Locators:       st.locators,
		ScalerLocator:  st.locators.Preprocessor,
		TrainStats:     st.train.stats,
		TestStats:      st.test.stats,
	}, nil
}

func (t *Transformation) pipeline(logger *zap.Logger) *Pipeline {
	contract := t.cfg.Contract
	return &Pipeline{
		Stages: []Stage{
			loadStage{},
			engineerStage{engineer: t.engineer, observe: func(p Partition, stats *feature.CoercionStats) {
				t.metrics.observeStats(p, stats)
				for _, col := range stats.Columns() {
					logger.Info("values coerced to missing",
						zap.String("partition", string(p)),
						zap.String("column", col),
						zap.Int("missing", stats.Missing[col]),
						zap.Int("invalid", stats.Invalid[col]),
						zap.Int("rows", stats.Rows),
					)
				}
			}},
			validateStage{contract: contract},
			fitStage{contract: contract},
			transformStage{contract: contract},
			assembleStage{contract: contract},
			persistStage{contract: contract, artifacts: t.artifacts},
		},
		Observer: func(stage string, elapsed time.Duration, err error) {
			t.metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
			if err != nil {
				return
			}
			logger.Debug("stage finished", zap.String("stage", stage), zap.Duration("elapsed", elapsed))
		},
	}
}
