package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/txnprep/core"
)

type recordingStage struct {
	name  string
	err   error
	calls *[]string
}

func (s recordingStage) Name() string { return s.name }

func (s recordingStage) Process(context.Context, *State) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func TestPipeline_Run(t *testing.T) {
	var calls, observed []string
	p := &Pipeline{
		Stages: []Stage{
			recordingStage{name: "a", calls: &calls},
			recordingStage{name: "b", calls: &calls},
		},
		Observer: func(stage string, _ time.Duration, err error) {
			observed = append(observed, stage)
		},
	}
	require.NoError(t, p.Run(context.Background(), &State{}))
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, []string{"a", "b"}, observed)
}

func TestPipeline_StopsAtFailedStage(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	p := &Pipeline{Stages: []Stage{
		recordingStage{name: "a", calls: &calls},
		recordingStage{name: "b", err: boom, calls: &calls},
		recordingStage{name: "c", calls: &calls},
	}}

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "b", core.FailedStage(err))
	assert.Equal(t, "stage b: boom", err.Error())
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	p := &Pipeline{Stages: []Stage{recordingStage{name: "a", calls: &calls}}}
	err := p.Run(ctx, &State{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}
