// Package worker runs independent jobs, such as parsing the files of a data
// directory, with bounded concurrency.
package worker

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task pairs one input with the outcome of processing it.
type Task[T, R any] struct {
	Input  T
	Result R
	Err    error
}

// Pool processes inputs with at most a fixed number of goroutines.
type Pool[T, R any] struct {
	limit int
	fn    func(context.Context, T) (R, error)
}

// NewPool returns a pool running fn on up to workers inputs at once.
func NewPool[T, R any](workers int, fn func(context.Context, T) (R, error)) *Pool[T, R] {
	return &Pool[T, R]{limit: max(workers, 1), fn: fn}
}

// Execute processes every input and returns one task per input, in input
// order. A failing input does not stop the others. Inputs not started before
// ctx is cancelled carry ctx's error.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	tasks := make([]Task[T, R], len(inputs))

	var g errgroup.Group
	g.SetLimit(p.limit)
	for i, in := range inputs {
		tasks[i].Input = in
		if err := ctx.Err(); err != nil {
			tasks[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				tasks[i].Err = err
				return nil
			}
			tasks[i].Result, tasks[i].Err = p.fn(ctx, in)
			if tasks[i].Err != nil {
				log.Warn().Err(tasks[i].Err).Int("index", i).Msg("Task failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return tasks
}

// Failed filters tasks down to those with an error.
func Failed[T, R any](tasks []Task[T, R]) []Task[T, R] {
	var out []Task[T, R]
	for _, t := range tasks {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Batch cuts items into consecutive chunks of at most size items.
func Batch[T any](items []T, size int) [][]T {
	size = max(size, 1)
	var out [][]T
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}
