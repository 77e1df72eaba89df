package loop

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/dmitrymomot/jokeviewer/pkg/logger"
)

// Task is a unit of work executed on the loop goroutine.
type Task func()

// PanicHandler is called on the loop goroutine when a task panics.
type PanicHandler func(value any, stack []byte)

// Loop is a single-threaded cooperative task loop.
//
// Tasks posted with Post run in FIFO order. Tasks scheduled with Defer are
// transitions: they run only when the normal queue is empty, and a newer task
// with the same key replaces a pending one. All tasks run on one goroutine,
// so state owned by the loop needs no further synchronization.
type Loop struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
	onPanic  PanicHandler
	wake     chan struct{}
	done     chan struct{}
	deferred map[string]Task
	waiters  []waiter
	queue    []Task
	order    []string
	inflight int
	mu       sync.Mutex
	busy     bool
	closed   bool
}

type waiter struct {
	ch     chan struct{}
	settle bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithPanicHandler sets a handler invoked after a task panic is recovered.
func WithPanicHandler(fn PanicHandler) Option {
	return func(lp *Loop) {
		lp.onPanic = fn
	}
}

// New creates a loop. Call Run to start processing tasks.
func New(opts ...Option) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.NewNope(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		deferred: make(map[string]Task),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Context returns a context that is cancelled when the loop is closed.
// Background work started with Go uses it.
func (l *Loop) Context() context.Context {
	return l.ctx
}

// Post appends a task to the normal queue.
func (l *Loop) Post(fn Task) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Defer schedules a deprioritized task under key. A pending task with the
// same key is replaced and the new one moves to the back of the transition
// queue.
func (l *Loop) Defer(key string, fn Task) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if _, ok := l.deferred[key]; ok {
		l.removeKey(key)
	}
	l.deferred[key] = fn
	l.order = append(l.order, key)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Cancel drops the pending deferred task for key.
// Reports whether a task was dropped.
func (l *Loop) Cancel(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.deferred[key]; !ok {
		return false
	}
	delete(l.deferred, key)
	l.removeKey(key)
	return true
}

// Pending reports whether a deferred task for key is waiting to run.
func (l *Loop) Pending(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.deferred[key]
	return ok
}

// Do posts fn and blocks until it has run.
func (l *Loop) Do(ctx context.Context, fn Task) error {
	ran := make(chan struct{})
	if err := l.Post(func() {
		defer close(ran)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Idle blocks until both queues are drained and no task is running.
func (l *Loop) Idle(ctx context.Context) error {
	return l.wait(ctx, false)
}

// Settle blocks until the loop is idle and every operation started with Go
// has delivered its continuation.
func (l *Loop) Settle(ctx context.Context) error {
	return l.wait(ctx, true)
}

// Run processes tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if task, ok := l.next(); ok {
			l.exec(task)
			l.mu.Lock()
			l.busy = false
			l.mu.Unlock()
			continue
		}

		l.notifyIdle()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Close stops the loop. Pending tasks are dropped and the loop context is
// cancelled. Close is idempotent.
func (l *Loop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.queue = nil
	l.order = nil
	clear(l.deferred)
	l.cancel()
	close(l.done)
	return nil
}

func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, false
	}
	if len(l.queue) > 0 {
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.busy = true
		return task, true
	}
	if len(l.order) > 0 {
		key := l.order[0]
		l.order = l.order[1:]
		task := l.deferred[key]
		delete(l.deferred, key)
		l.busy = true
		return task, true
	}
	return nil, false
}

func (l *Loop) exec(task Task) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			stack = stack[:runtime.Stack(stack, false)]
			l.logger.Error("loop task panicked", slog.Any("panic", r), slog.String("stack", string(stack)))
			if l.onPanic != nil {
				l.onPanic(r, stack)
			}
		}
	}()
	task()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// removeKey drops key from the transition order. Caller must hold the mutex.
func (l *Loop) removeKey(key string) {
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// idleLocked reports whether nothing is queued or running. Caller must hold the mutex.
func (l *Loop) idleLocked(settle bool) bool {
	if l.busy || len(l.queue) > 0 || len(l.order) > 0 {
		return false
	}
	return !settle || l.inflight == 0
}

func (l *Loop) wait(ctx context.Context, settle bool) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.idleLocked(settle) {
		l.mu.Unlock()
		return nil
	}
	w := waiter{ch: make(chan struct{}), settle: settle}
	l.waiters = append(l.waiters, w)
	l.mu.Unlock()

	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

func (l *Loop) notifyIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.waiters) == 0 {
		return
	}
	kept := l.waiters[:0]
	for _, w := range l.waiters {
		if l.idleLocked(w.settle) {
			close(w.ch)
			continue
		}
		kept = append(kept, w)
	}
	l.waiters = kept
}
