// Package retry re-runs short calls against flaky backends.
package retry

import (
	"fmt"
	"time"
)

var sleep = time.Sleep

// Do runs fn up to attempts times, backing off linearly between attempts,
// and returns the last error once the budget is spent.
func Do[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		sleep(time.Duration(500*(i+1)) * time.Millisecond)
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
