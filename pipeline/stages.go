package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
)

// 阶段名
const (
	StageLoad      = "load"
	StageEngineer  = "engineer"
	StageValidate  = "validate"
	StageFit       = "fit"
	StageTransform = "transform"
	StageAssemble  = "assemble"
	StagePersist   = "persist"
)

// loadStage 并发读取训练/测试 CSV；已经给出表的分区跳过
type loadStage struct{}

func (loadStage) Name() string { return StageLoad }

func (loadStage) Process(ctx context.Context, st *State) error {
	g, _ := errgroup.WithContext(ctx)
	for _, p := range st.partitions() {
		if p.raw != nil {
			continue
		}
		g.Go(func() error {
			t, err := dataset.ReadCSVFile(p.path)
			if err != nil {
				return err
			}
			p.raw = t
			return nil
		})
	}
	return g.Wait()
}

type engineerStage struct {
	engineer *feature.Engineer
	// observe 收到每个分区的类型转换统计，可为 nil
	observe func(Partition, *feature.CoercionStats)
}

func (engineerStage) Name() string { return StageEngineer }

func (s engineerStage) Process(_ context.Context, st *State) error {
	for _, name := range []Partition{PartitionTrain, PartitionTest} {
		p := st.partition(name)
		t, stats, err := s.engineer.Engineer(p.raw)
		if err != nil {
			return fmt.Errorf("%s partition: %w", name, err)
		}
		p.table, p.stats = t, stats
		if s.observe != nil {
			s.observe(name, stats)
		}
	}
	return nil
}

// validateStage 在任何 fit 之前检查两个分区都满足列契约（含标签列）
type validateStage struct {
	contract feature.Contract
}

func (validateStage) Name() string { return StageValidate }

func (s validateStage) Process(_ context.Context, st *State) error {
	if err := s.contract.ValidateLabeledTable(st.train.table); err != nil {
		return fmt.Errorf("%s partition: %w", PartitionTrain, err)
	}
	if err := s.contract.ValidateLabeledTable(st.test.table); err != nil {
		return fmt.Errorf("%s partition: %w", PartitionTest, err)
	}
	return nil
}

// fitStage 只用训练分区拟合三个估计器
type fitStage struct {
	contract feature.Contract
}

func (fitStage) Name() string { return StageFit }

func (s fitStage) Process(_ context.Context, st *State) error {
	x, err := feature.NumericMatrix(st.train.table, s.contract.Numerical)
	if err != nil {
		return err
	}
	st.imputer = feature.NewImputer(s.contract.Numerical)
	imputed, err := st.imputer.FitTransform(x)
	if err != nil {
		return fmt.Errorf("imputer: %w", err)
	}
	st.scaler = feature.NewScaler(s.contract.Numerical)
	if err := st.scaler.Fit(imputed); err != nil {
		return fmt.Errorf("scaler: %w", err)
	}
	st.encoder = feature.NewOneHotEncoder(s.contract.Categorical)
	if err := st.encoder.Fit(st.train.table); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	return nil
}

// transformStage 用已拟合的参数变换两个分区
type transformStage struct {
	contract feature.Contract
}

func (transformStage) Name() string { return StageTransform }

func (s transformStage) Process(_ context.Context, st *State) error {
	for _, p := range st.partitions() {
		x, err := feature.NumericMatrix(p.table, s.contract.Numerical)
		if err != nil {
			return err
		}
		imputed, err := st.imputer.Transform(x)
		if err != nil {
			return err
		}
		if p.num, err = st.scaler.Transform(imputed); err != nil {
			return err
		}
		if p.cat, err = st.encoder.Transform(p.table); err != nil {
			return err
		}
	}
	return nil
}

type assembleStage struct {
	contract feature.Contract
}

func (assembleStage) Name() string { return StageAssemble }

func (s assembleStage) Process(_ context.Context, st *State) error {
	for _, p := range st.partitions() {
		col, _ := p.table.Column(s.contract.Label)
		labels := make([]float64, len(col.Ints))
		for i, v := range col.Ints {
			labels[i] = float64(v)
		}
		out, err := feature.Assemble(p.num, p.cat, labels)
		if err != nil {
			return err
		}
		p.out = out
	}
	return nil
}

type persistStage struct {
	contract  feature.Contract
	artifacts *artifact.Store
}

func (persistStage) Name() string { return StagePersist }

func (s persistStage) Process(ctx context.Context, st *State) error {
	b, err := artifact.NewBundle(s.contract, st.imputer, st.scaler, st.encoder)
	if err != nil {
		return err
	}
	locators, err := s.artifacts.Persist(ctx, b)
	if err != nil {
		return err
	}
	st.bundle, st.locators = b, locators
	return nil
}
