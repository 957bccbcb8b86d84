package tools

import (
	"context"
	"log"
)

// JobFunc is a unit of background work.
type JobFunc func(ctx context.Context) error

// Dispatch runs the job on its own goroutine and logs its failure. Callers
// do not wait for the result.
func Dispatch(ctx context.Context, name string, fn JobFunc) {
	go func() {
		if err := fn(ctx); err != nil {
			log.Printf("[%s] job failed: %v", name, err)
		}
	}()
}
