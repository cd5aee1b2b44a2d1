package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoReusesUnchangedInput(t *testing.T) {
	var memo Memo
	in := Input{
		Version: 1,
		Size:    100,
		Metrics: DefaultRowMetrics(),
		State:   ViewportState{ScrollOffset: 0, ContainerSize: 1000},
		Config:  DefaultConfig(),
	}

	first := memo.Compute(in)
	second := memo.Compute(in)
	assert.Equal(t, first, second)

	stats := memo.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestMemoRecomputesOnAnyChange(t *testing.T) {
	var memo Memo
	base := Input{
		Version: 1,
		Size:    100,
		Metrics: DefaultRowMetrics(),
		State:   ViewportState{ScrollOffset: 0, ContainerSize: 1000},
		Config:  DefaultConfig(),
	}
	memo.Compute(base)

	changes := []func(in Input) Input{
		func(in Input) Input { in.Version++; return in },
		func(in Input) Input { in.Size = 200; return in },
		func(in Input) Input { in.Metrics.RowMargin = 2; return in },
		func(in Input) Input { in.State.ScrollOffset = 44; return in },
		func(in Input) Input { in.Config.ViewBuffer = 0; return in },
		func(in Input) Input { in.AtEnd = true; return in },
	}

	for _, change := range changes {
		in := change(base)
		got := memo.Compute(in)
		assert.Equal(t, Compute(in.Size, in.Metrics, in.State, in.Config, in.AtEnd), got)
		memo.Compute(base)
	}

	stats := memo.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1+2*len(changes)), stats.Misses)
}

func TestMemoReset(t *testing.T) {
	var memo Memo
	in := Input{Size: 3, Metrics: DefaultRowMetrics(), State: ViewportState{ContainerSize: 10}}

	memo.Compute(in)
	memo.Reset()
	memo.Compute(in)

	assert.Equal(t, int64(2), memo.Stats().Misses)
	assert.Equal(t, 0.0, memo.Stats().HitRate)
}
