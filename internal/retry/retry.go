// Package retry provides capped exponential backoff for transient
// network failures.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts+1 times. fn reports whether its failure is
// worth another attempt; a false return (success or fatal failure)
// stops immediately. Between attempts Do sleeps base<<n, honoring
// context cancellation.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() (retryable bool)) {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	for i := 0; ; i++ {
		if !fn() || i >= attempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(base << uint(i)):
		}
	}
}
