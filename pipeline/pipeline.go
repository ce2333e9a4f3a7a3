package pipeline

import (
	"context"
	"time"

	"github.com/rushteam/txnprep/core"
)

// Stage 是流水线的最小单元，按顺序读写同一个 State。
type Stage interface {
	Name() string
	Process(ctx context.Context, st *State) error
}

// StageObserver 在每个阶段结束后被调用（用于日志与打点）
type StageObserver func(stage string, elapsed time.Duration, err error)

// Pipeline 把一次预处理拆成可组合的 Stage 链。
// 任一阶段失败即停止，错误包装为 *core.StageError。
type Pipeline struct {
	Stages   []Stage
	Observer StageObserver
}

func (p *Pipeline) Run(ctx context.Context, st *State) error {
	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return &core.StageError{Stage: stage.Name(), Err: err}
		}
		start := time.Now()
		err := stage.Process(ctx, st)
		if p.Observer != nil {
			p.Observer(stage.Name(), time.Since(start), err)
		}
		if err != nil {
			return &core.StageError{Stage: stage.Name(), Err: err}
		}
	}
	return nil
}
