package pipeline

import (
	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
)

// Partition 数据分区名
type Partition string

const (
	PartitionTrain Partition = "train"
	PartitionTest  Partition = "test"
)

// partitionState 单个分区在各阶段之间传递的数据
type partitionState struct {
	path  string
	raw   *dataset.Table
	table *dataset.Table
	stats *feature.CoercionStats
	num   *feature.Matrix
	cat   *feature.Matrix
	out   *feature.Matrix
}

// State 是一次运行在各阶段之间共享的状态，每次运行新建，不跨运行复用。
type State struct {
	RunID string

	train partitionState
	test  partitionState

	imputer *feature.Imputer
	scaler  *feature.Scaler
	encoder *feature.OneHotEncoder

	bundle   *artifact.Bundle
	locators artifact.Locators
}

func (st *State) partitions() []*partitionState {
	return []*partitionState{&st.train, &st.test}
}

func (st *State) partition(p Partition) *partitionState {
	if p == PartitionTest {
		return &st.test
	}
	return &st.train
}
