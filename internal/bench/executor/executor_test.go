package executor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/executor"
)

// sleepFactory returns invocations that sleep for d and report ok.
func sleepFactory(d time.Duration, ok func(i int) bool) executor.Factory {
	return func(i int) executor.Invocation {
		return func(ctx context.Context) executor.Result {
			time.Sleep(d)
			return executor.Result{Succeeded: ok(i)}
		}
	}
}

func always(int) bool { return true }

func TestRun_ZeroTotal(t *testing.T) {
	called := false
	outcomes := executor.Run(context.Background(), 0, 4, func(int) executor.Invocation {
		called = true
		return nil
	})

	assert.NotNil(t, outcomes)
	assert.Empty(t, outcomes)
	assert.False(t, called, "factory must not be called for an empty run")
}

func TestRun_AllInvocationsComplete(t *testing.T) {
	outcomes := executor.Run(context.Background(), 50, 5, sleepFactory(time.Millisecond, always))

	require.Len(t, outcomes, 50)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.True(t, o.Succeeded)
		assert.Equal(t, o.EndedAt.Sub(o.StartedAt), o.Duration)
		assert.GreaterOrEqual(t, o.Duration, time.Millisecond)
	}
}

func TestRun_FailuresDoNotStopTheRun(t *testing.T) {
	failing := func(i int) bool { return i%3 != 0 }
	outcomes := executor.Run(context.Background(), 30, 4, sleepFactory(0, failing))

	require.Len(t, outcomes, 30)
	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded {
			failed++
		}
	}
	assert.Equal(t, 10, failed)
}

func TestRun_GateNeverExceedsLimit(t *testing.T) {
	const limit = 7

	var violations atomic.Int64
	e := executor.New(limit, executor.WithGateObserver(func(active int64) {
		if active > limit || active < 0 {
			violations.Add(1)
		}
	}))

	var inFlight, maxSeen atomic.Int64
	factory := func(i int) executor.Invocation {
		return func(ctx context.Context) executor.Result {
			n := inFlight.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return executor.Result{Succeeded: true}
		}
	}

	outcomes := e.Run(context.Background(), 200, factory)

	require.Len(t, outcomes, 200)
	assert.Zero(t, violations.Load())
	assert.LessOrEqual(t, maxSeen.Load(), int64(limit))
	assert.LessOrEqual(t, e.Gate().Peak(), limit)
	assert.Equal(t, limit, e.Gate().Peak(), "200 slow invocations should saturate the gate")
	assert.Zero(t, e.Gate().Active())
}

func TestRun_LimitAboveTotalRunsEverythingAtOnce(t *testing.T) {
	const total = 10

	var started sync.WaitGroup
	started.Add(total)
	release := make(chan struct{})

	e := executor.New(100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(context.Background(), total, func(i int) executor.Invocation {
			return func(ctx context.Context) executor.Result {
				started.Done()
				<-release
				return executor.Result{Succeeded: true}
			}
		})
	}()

	// Every invocation must be in flight before any is released.
	started.Wait()
	assert.Equal(t, total, e.Gate().Active())
	close(release)
	<-done
	assert.Equal(t, total, e.Gate().Peak())
}

func TestRun_DurationExcludesGateWait(t *testing.T) {
	outcomes := executor.Run(context.Background(), 4, 1, sleepFactory(20*time.Millisecond, always))

	require.Len(t, outcomes, 4)
	for _, o := range outcomes {
		// With a single permit later invocations wait ~60ms, which must not
		// show up in their own duration.
		assert.Less(t, o.Duration, 50*time.Millisecond)
	}
}

func TestRun_PanicCountsAsFailure(t *testing.T) {
	outcomes := executor.Run(context.Background(), 5, 2, func(i int) executor.Invocation {
		return func(ctx context.Context) executor.Result {
			if i == 2 {
				panic("boom")
			}
			return executor.Result{Succeeded: true}
		}
	})

	require.Len(t, outcomes, 5)
	assert.False(t, outcomes[2].Succeeded)
	assert.True(t, outcomes[0].Succeeded)
	assert.True(t, outcomes[4].Succeeded)
}

func TestRun_CancelledContextFailsWaitingInvocations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran atomic.Int64
	outcomes := executor.Run(ctx, 20, 1, func(i int) executor.Invocation {
		return func(ctx context.Context) executor.Result {
			ran.Add(1)
			cancel()
			return executor.Result{Succeeded: true}
		}
	})

	require.Len(t, outcomes, 20)
	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded {
			failed++
		}
	}
	assert.Equal(t, int64(20-failed), ran.Load())
	assert.Positive(t, failed)
}

func TestExecutor_Stats(t *testing.T) {
	e := executor.New(3)

	assert.False(t, e.IsRunning())
	assert.Zero(t, e.GetProgress())

	e.Run(context.Background(), 12, sleepFactory(0, func(i int) bool { return i < 8 }))

	assert.False(t, e.IsRunning())
	assert.Equal(t, 1.0, e.GetProgress())

	stats := e.GetStats()
	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(12), stats.Completed)
	assert.Equal(t, int64(4), stats.Failed)
	assert.Equal(t, 3, stats.Limit)
	assert.Zero(t, stats.InFlight)
	assert.False(t, stats.StartTime.IsZero())
}

func TestRun_StepsArePassedThrough(t *testing.T) {
	outcomes := executor.Run(context.Background(), 1, 1, func(i int) executor.Invocation {
		return func(ctx context.Context) executor.Result {
			return executor.Result{
				Succeeded: true,
				Steps:     []bench.StepTiming{{Name: "login", Duration: time.Millisecond, Succeeded: true}},
			}
		}
	})

	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Steps, 1)
	assert.Equal(t, "login", outcomes[0].Steps[0].Name)
}
