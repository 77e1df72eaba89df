package query

import (
	"context"

	"github.com/dmitrymomot/jokeviewer/pkg/loop"
)

// State is the observable state of a Query.
type State[T any] struct {
	Err      error
	Data     T
	Key      string
	HasData  bool
	Fetching bool
}

// Active reports whether the query tracks a request key.
func (s State[T]) Active() bool {
	return s.Key != ""
}

// Query owns the request lifecycle for one logical request. Its key
// identifies the request parameters: changing the key issues a new request,
// and results that arrive for any other key than the current one are cached
// but never applied.
//
// All methods except State must be called on the loop goroutine.
type Query[T any] struct {
	loop      *loop.Loop
	client    *Client
	fetch     Fetcher[T]
	observers []func(State[T])
	state     State[T]
}

// New creates an inactive query bound to a loop and a request cache.
func New[T any](l *loop.Loop, c *Client) *Query[T] {
	return &Query[T]{loop: l, client: c}
}

// State returns the current state.
func (q *Query[T]) State() State[T] {
	return q.state
}

// Subscribe registers fn to be called on the loop after every state change.
func (q *Query[T]) Subscribe(fn func(State[T])) {
	q.observers = append(q.observers, fn)
}

// SetKey points the query at key. A cached result is applied immediately;
// otherwise a request is issued with fn. An empty key deactivates the query:
// it then exposes neither data nor an error.
//
// Setting the key the query already tracks is a no-op.
func (q *Query[T]) SetKey(key string, fn Fetcher[T]) {
	if key == "" {
		if q.state.Active() || q.state.HasData || q.state.Err != nil {
			q.fetch = nil
			q.state = State[T]{}
			q.publish()
		}
		return
	}
	if key == q.state.Key {
		return
	}

	q.fetch = fn
	if v, ok := Peek[T](q.client, key); ok {
		q.state = State[T]{Key: key, Data: v, HasData: true}
		q.publish()
		return
	}

	q.state = State[T]{Key: key, Fetching: true}
	q.publish()
	q.start(key, false)
}

// Refetch re-issues the request for the current key, bypassing the cache.
// The previous data stays visible until the new result arrives. Calling
// Refetch while a request is in flight has no effect.
func (q *Query[T]) Refetch() {
	if !q.state.Active() || q.state.Fetching {
		return
	}
	q.state.Fetching = true
	q.publish()
	q.start(q.state.Key, true)
}

func (q *Query[T]) start(key string, force bool) {
	fn := q.fetch
	err := loop.Go(q.loop, func(ctx context.Context) (T, error) {
		if force {
			return Refresh(ctx, q.client, key, fn)
		}
		return Fetch(ctx, q.client, key, fn)
	}, func(v T, err error) {
		q.resolve(key, v, err)
	})
	if err != nil {
		q.state.Fetching = false
		q.state.Err = err
		q.publish()
	}
}

func (q *Query[T]) resolve(key string, v T, err error) {
	if key != q.state.Key {
		return
	}
	q.state.Fetching = false
	if err != nil {
		q.state.Err = err
	} else {
		q.state.Data = v
		q.state.HasData = true
		q.state.Err = nil
	}
	q.publish()
}

func (q *Query[T]) publish() {
	s := q.state
	for _, fn := range q.observers {
		fn(s)
	}
}
