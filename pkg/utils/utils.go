package utils

import (
	"context"
	"log"
	"runtime/debug"

	"golang-stock-analyzer/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so a single
// misbehaving job cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging the
// cancellation when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
