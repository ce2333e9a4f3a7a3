// Package txnprep 是交易反欺诈场景的特征预处理工具包。
//
// 设计要点：
// - Contract-first: 列契约（数值列 ++ 类别列）决定输入校验与输出列顺序
// - Fit-once: 填充器、标准化器、编码器只在训练分区上拟合，测试分区与推理只读使用
// - Artifacts 可复现: 四个产物经 core.Store 持久化，推理侧 inference.Vectorizer 得到与训练一致的向量
package txnprep

import (
	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/pipeline"
)

// 轻量 facade：便于用户直接 import "txnprep" 使用核心抽象。
type (
	Transformation = pipeline.Transformation
	Config         = pipeline.Config
	Result         = pipeline.Result
	Contract       = feature.Contract
	Bundle         = artifact.Bundle
)

var (
	New             = pipeline.New
	DefaultConfig   = pipeline.DefaultConfig
	DefaultContract = feature.DefaultContract
)
