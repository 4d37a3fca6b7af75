package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xstable/lib/xlog"
)

func newTestRunner(t *testing.T, opts ...RunnerOption) *Runner {
	r, err := NewRunner(append([]RunnerOption{
		WithRunnerWorkers(2),
		WithRunnerLogger(xlog.NewNopXLogger()),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestRunner_DefaultWorkloads(t *testing.T) {
	workloads, err := LoadWorkloads("")
	require.NoError(t, err)
	r := newTestRunner(t, WithRunnerStats())
	results, err := r.Run(context.Background(), workloads)
	require.NoError(t, err)
	require.Len(t, results, len(workloads))
	for i, res := range results {
		require.Equal(t, workloads[i].Name, res.Name)
		applied := 0
		for _, n := range res.OpCounts {
			applied += n
		}
		require.Equal(t, workloads[i].Ops, applied+res.Rejected)
		require.Greater(t, res.StabilityChecks, 0)
	}
	// The capped workload must hit its cap at least once.
	require.Greater(t, results[2].Rejected, 0)
	require.LessOrEqual(t, results[2].FinalLen, workloads[2].MaxSize)
}

func TestRunner_Deterministic(t *testing.T) {
	w := Workload{
		Name:        "det",
		InitialSize: 32,
		Ops:         500,
		Seed:        42,
		Tracked:     8,
		Mix:         OpMix{Insert: 3, Erase: 3, Resize: 1, Swap: 1, Assign: 1},
	}
	r := newTestRunner(t)
	first, err := r.Run(context.Background(), []Workload{w})
	require.NoError(t, err)
	second, err := r.Run(context.Background(), []Workload{w})
	require.NoError(t, err)
	require.Equal(t, first[0].OpCounts, second[0].OpCounts)
	require.Equal(t, first[0].FinalLen, second[0].FinalLen)
	require.Equal(t, first[0].StabilityChecks, second[0].StabilityChecks)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newTestRunner(t)
	_, err := r.Run(ctx, []Workload{
		{Name: "a", Ops: 10, Mix: OpMix{PushBack: 1}},
		{Name: "b", Ops: 10, Mix: OpMix{PushBack: 1}},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_InvalidWorkload(t *testing.T) {
	r := newTestRunner(t)
	results, err := r.Run(context.Background(), []Workload{
		{Name: "ok", Ops: 5, Mix: OpMix{PushBack: 1}},
		{Name: "bad", Ops: 5},
	})
	require.ErrorIs(t, err, ErrWorkloadInvalid)
	require.Equal(t, 5, results[0].OpCounts[OpPushBack])
}

func TestRunner_BadOptions(t *testing.T) {
	_, err := NewRunner(WithRunnerWorkers(0))
	require.Error(t, err)
	_, err = NewRunner(WithRunnerLogger(nil))
	require.Error(t, err)
}
