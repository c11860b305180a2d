package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	runIDKey contextKey = iota
	iterationKey
)

// WithRunID attaches a fresh run identifier to the context. Every engine run
// tags its log records with one so concurrent replicate analyses can be told
// apart in shared output.
func WithRunID(ctx context.Context) context.Context {
	return context.WithValue(ctx, runIDKey, uuid.New().String())
}

// GetRunID returns the run identifier attached to the context, if any.
func GetRunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// WithIteration records the current iteration counter on the context.
func WithIteration(ctx context.Context, iteration int) context.Context {
	return context.WithValue(ctx, iterationKey, iteration)
}

// GetIteration returns the iteration counter attached to the context, if any.
func GetIteration(ctx context.Context) (int, bool) {
	it, ok := ctx.Value(iterationKey).(int)
	return it, ok
}
