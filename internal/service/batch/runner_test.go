package batch

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	Trend string
	Text  string
}

func makeItems(n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{Trend: "trend", Text: string(rune('a'+i%26)) + time.Duration(i).String()}
	}
	return items
}

func TestRunNeverExceedsConcurrency(t *testing.T) {
	const limit = 5
	items := makeItems(60)

	var inFlight, peak atomic.Int64
	rng := rand.New(rand.NewSource(42))
	delays := make([]time.Duration, len(items))
	for i := range delays {
		delays[i] = time.Duration(rng.Intn(8)+1) * time.Millisecond
	}

	results := Run(context.Background(), items, Options{Concurrency: limit, Logger: zap.NewNop()},
		func(_ context.Context, it item) (string, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			idx := 0
			for i := range items {
				if items[i] == it {
					idx = i
					break
				}
			}
			time.Sleep(delays[idx])
			inFlight.Add(-1)
			return it.Text, nil
		})

	require.Len(t, results, len(items))
	assert.LessOrEqual(t, peak.Load(), int64(limit))
	assert.Greater(t, peak.Load(), int64(1))
}

func TestRunIsolatesFailures(t *testing.T) {
	items := makeItems(23)
	errBoom := errors.New("transport error")
	failing := make(map[item]bool)
	for i := 0; i < len(items); i += 3 {
		failing[items[i]] = true
	}

	results := Run(context.Background(), items, Options{Concurrency: 4},
		func(_ context.Context, it item) (string, error) {
			if failing[it] {
				return "", errBoom
			}
			return "ok:" + it.Text, nil
		})

	succeeded, failed := Partition(results)
	assert.Equal(t, len(items), len(succeeded)+len(failed))
	assert.Len(t, failed, len(failing))

	failedSet := make(map[item]bool, len(failed))
	for _, f := range failed {
		failedSet[f] = true
	}
	for _, s := range succeeded {
		text := s[len("ok:"):]
		assert.False(t, failedSet[item{Trend: "trend", Text: text}], "item in both partitions: %s", text)
	}

	summary := Summarize(results)
	assert.Equal(t, Summary{Total: len(items), Succeeded: len(succeeded), Failed: len(failed)}, summary)
}

func TestRunPreservesInputMapping(t *testing.T) {
	items := makeItems(30)

	results := Run(context.Background(), items, Options{Concurrency: 3},
		func(_ context.Context, it item) (string, error) {
			time.Sleep(time.Duration(len(it.Text)%4) * time.Millisecond)
			return it.Text, nil
		})

	for i, r := range results {
		assert.Equal(t, items[i], r.Input)
		assert.Equal(t, items[i].Text, r.Output)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	items := makeItems(5)

	results := Run(context.Background(), items, Options{Concurrency: 2},
		func(_ context.Context, it item) (int, error) {
			if it == items[2] {
				panic("parser exploded")
			}
			return 1, nil
		})

	require.Len(t, results, 5)
	assert.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "parser exploded")

	summary := Summarize(results)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunDefaultsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int64
	items := makeItems(20)

	Run(context.Background(), items, Options{},
		func(_ context.Context, _ item) (struct{}, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		})

	assert.LessOrEqual(t, peak.Load(), int64(5))
}

func TestRunEmpty(t *testing.T) {
	results := Run(context.Background(), []item{}, Options{Concurrency: 2},
		func(context.Context, item) (int, error) { return 0, nil })
	assert.Empty(t, results)

	succeeded, failed := Partition(results)
	assert.Empty(t, succeeded)
	assert.Empty(t, failed)
}
