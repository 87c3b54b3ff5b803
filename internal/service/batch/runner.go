// Package batch runs many independent LLM-bound calls under a fixed
// concurrency ceiling and partitions the outcomes.
package batch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Result pairs an input item with what its call produced. Err is set when the
// item failed, in which case Output is the zero value.
type Result[In, Out any] struct {
	Input  In
	Output Out
	Err    error
}

func (r Result[In, Out]) OK() bool {
	return r.Err == nil
}

type Options struct {
	// Concurrency is the maximum number of calls in flight. Values below 1 use the default.
	Concurrency int
	// Name labels progress logs.
	Name   string
	Logger *zap.Logger
}

// Run calls fn for every item with at most Concurrency calls in flight and
// waits for all of them. One item's failure or panic never affects the others,
// and there is no batch-level timeout: each call is bounded by its own context.
// The returned slice has one Result per item, in input order.
func Run[In, Out any](ctx context.Context, items []In, opts Options, fn func(ctx context.Context, item In) (Out, error)) []Result[In, Out] {
	limit := opts.Concurrency
	if limit < 1 {
		limit = constants.BatchConfig.DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result[In, Out], len(items))
	if len(items) == 0 {
		return results
	}

	logger.Info("Batch started",
		zap.String("batch", opts.Name),
		zap.Int("items", len(items)),
		zap.Int("concurrency", limit),
	)

	progress := newProgress(len(items), opts.Name, logger)
	p := pool.New().WithMaxGoroutines(limit)

	for i := range items {
		p.Go(func() {
			defer progress.done()
			results[i] = runOne(ctx, items[i], fn)
		})
	}
	p.Wait()

	return results
}

func runOne[In, Out any](ctx context.Context, item In, fn func(ctx context.Context, item In) (Out, error)) (res Result[In, Out]) {
	res.Input = item
	defer func() {
		if r := recover(); r != nil {
			var zero Out
			res.Output = zero
			res.Err = fmt.Errorf("panic in batch item: %v\n%s", r, debug.Stack())
		}
	}()

	out, err := fn(ctx, item)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = out
	return res
}

// Partition splits results into the outputs that succeeded and the inputs that
// failed. len(succeeded)+len(failed) == len(results) and no item lands in both.
func Partition[In, Out any](results []Result[In, Out]) (succeeded []Out, failed []In) {
	succeeded = make([]Out, 0, len(results))
	failed = make([]In, 0)
	for _, r := range results {
		if r.OK() {
			succeeded = append(succeeded, r.Output)
		} else {
			failed = append(failed, r.Input)
		}
	}
	return succeeded, failed
}

// Summary counts outcomes of a finished batch.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

func Summarize[In, Out any](results []Result[In, Out]) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

type progress struct {
	total    int
	step     int
	finished atomic.Int64
	name     string
	logger   *zap.Logger
}

func newProgress(total int, name string, logger *zap.Logger) *progress {
	step := total / constants.BatchConfig.ProgressSteps
	if step < 1 {
		step = 1
	}
	return &progress{total: total, step: step, name: name, logger: logger}
}

func (p *progress) done() {
	n := int(p.finished.Add(1))
	if n%p.step == 0 || n == p.total {
		p.logger.Info("Batch progress",
			zap.String("batch", p.name),
			zap.Int("done", n),
			zap.Int("total", p.total),
		)
	}
}
