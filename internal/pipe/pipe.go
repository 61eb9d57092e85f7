// Package pipe composes unary transforms into left-to-right pipelines.
//
// A pipeline never skips a stage on its own: conditional behaviour belongs
// inside the stages. The first stage that returns an error stops the
// pipeline and no later stage runs.
package pipe

import (
	"context"
	"fmt"
)

// Func is a synchronous stage. It never blocks on I/O or user input.
type Func[T any] func(T) (T, error)

// Stage is a stage that may block (filesystem queries, prompts).
type Stage[T any] func(context.Context, T) (T, error)

// StageError reports which stage of a pipeline failed.
type StageError struct {
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %d: %v", e.Index, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause walk through a StageError.
func (e *StageError) Cause() error { return e.Err }

// Sync folds the stages over the input, left to right.
func Sync[T any](stages ...Func[T]) Func[T] {
	return func(v T) (T, error) {
		for i, stage := range stages {
			out, err := stage(v)
			if err != nil {
				var zero T
				return zero, &StageError{Index: i, Err: err}
			}
			v = out
		}
		return v, nil
	}
}

// Async runs blocking stages strictly in order. Stage n+1 is only invoked
// after stage n has returned. The context is checked between stages; a
// running stage is never interrupted by the composer.
func Async[T any](stages ...Stage[T]) Stage[T] {
	return func(ctx context.Context, v T) (T, error) {
		var zero T
		for i, stage := range stages {
			if err := ctx.Err(); err != nil {
				return zero, &StageError{Index: i, Err: err}
			}
			out, err := stage(ctx, v)
			if err != nil {
				return zero, &StageError{Index: i, Err: err}
			}
			v = out
		}
		return v, nil
	}
}

// Lift turns a synchronous stage (or a whole Sync pipeline) into a Stage.
func Lift[T any](f Func[T]) Stage[T] {
	return func(_ context.Context, v T) (T, error) {
		return f(v)
	}
}

// Pure adapts an infallible transform.
func Pure[T any](f func(T) T) Func[T] {
	return func(v T) (T, error) {
		return f(v), nil
	}
}

// Tap observes the value flowing through a pipeline and passes it on unchanged.
func Tap[T any](observe func(T)) Func[T] {
	return func(v T) (T, error) {
		observe(v)
		return v, nil
	}
}
