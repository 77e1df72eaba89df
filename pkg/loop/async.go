package loop

import "context"

// Go runs fetch on its own goroutine with the loop context and delivers the
// result to apply on the loop goroutine. The operation counts towards Settle
// until apply has run. A panic in fetch is re-raised on the loop, where the
// panic handler sees it.
//
// Results are never cancelled by newer operations; apply is expected to
// discard outcomes that no longer match the caller's state.
func Go[T any](l *Loop, fetch func(ctx context.Context) (T, error), apply func(T, error)) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.inflight++
	l.mu.Unlock()

	go func() {
		var (
			v        T
			err      error
			panicked any
		)
		func() {
			defer func() { panicked = recover() }()
			v, err = fetch(l.ctx)
		}()

		if postErr := l.Post(func() {
			l.release()
			if panicked != nil {
				panic(panicked)
			}
			apply(v, err)
		}); postErr != nil {
			l.release()
		}
	}()
	return nil
}

func (l *Loop) release() {
	l.mu.Lock()
	l.inflight--
	l.mu.Unlock()
}
