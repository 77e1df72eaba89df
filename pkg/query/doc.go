// Package query implements request-keyed data fetching on top of a [loop.Loop].
//
// A [Client] is the process-wide request cache: results are stored by request
// key and concurrent requests for the same key collapse into one call. A
// [Query] is a single logical request owned by one loop. It exposes a
// [State] with the current key, data, error and fetching flag, and notifies
// subscribers on the loop goroutine whenever the state changes.
//
//	client := query.NewClient()
//	jokes := query.New[[]string](l, client)
//	jokes.Subscribe(func(s query.State[[]string]) { ... })
//
//	l.Post(func() {
//	    jokes.SetKey("jokes|viewer-1", fetchJokes)
//	})
//
// A result that arrives after the query moved to another key is written to
// the cache under its own key and otherwise discarded.
package query
