package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSuperseded is returned when a newer Evaluate call started before this
// one finished.
var ErrSuperseded = errors.New("engine: evaluation superseded by newer request")

// ErrTimeout is wrapped by the error returned when an evaluation runs past
// its deadline.
var ErrTimeout = errors.New("engine: evaluation timed out")

// evalResult carries one evaluation's output through a channel.
type evalResult struct {
	result *Result
	errors []EvalError
	err    error
}

// waitWithTimeout waits for ch up to timeout. Results whose generation is
// no longer current are discarded. A timed-out evaluation keeps running on
// its goroutine; its buffered send never blocks.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*Result, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.result, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
