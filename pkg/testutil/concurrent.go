package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/sentinel"
)

// ConcurrentResult tallies the outcomes of a concurrent run by error category.
type ConcurrentResult struct {
	Successes        int32
	Conflicts        int32
	NotFounds        int32
	StateTransitions int32
	Validations      int32
	Errors           int32
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.StateTransitions + r.Validations + r.Errors
}

// RunConcurrent starts goroutines that all block on a shared gate, releases
// them together, and classifies each returned error.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg    sync.WaitGroup
		gate  = make(chan struct{})
		res   ConcurrentResult
		count = func(p *int32) { atomic.AddInt32(p, 1) }
	)

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-gate
			err := fn(idx)
			switch {
			case err == nil:
				count(&res.Successes)
			case errors.Is(err, sentinel.ErrConflict) || dErrors.HasCode(err, dErrors.CodeConflict):
				count(&res.Conflicts)
			case errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound):
				count(&res.NotFounds)
			case dErrors.HasCode(err, dErrors.CodeInvalidStateTransition):
				count(&res.StateTransitions)
			case dErrors.HasCode(err, dErrors.CodeValidation):
				count(&res.Validations)
			default:
				count(&res.Errors)
			}
		}(i)
	}

	close(gate)
	wg.Wait()
	return &res
}

// RunConcurrentCollect runs fn concurrently and returns every non-nil error.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  atomic.Int32
		out []error
	)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				out = append(out, err)
				mu.Unlock()
				return
			}
			ok.Add(1)
		}(i)
	}
	wg.Wait()
	return ok.Load(), out
}
