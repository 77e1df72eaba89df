package viewer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/pkg/query"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

func newRegistry(t *testing.T, opts ...viewer.RegistryOption) *viewer.Registry {
	t.Helper()

	client := query.NewClient()
	r := viewer.NewRegistry(client, sources("funny joke"), opts...)
	t.Cleanup(func() {
		_ = r.Close()
		_ = client.Close()
	})
	return r
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("one orchestrator per viewer", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t)

		a1, err := r.Get(ctx, "a")
		require.NoError(t, err)
		a2, err := r.Get(ctx, "a")
		require.NoError(t, err)
		b, err := r.Get(ctx, "b")
		require.NoError(t, err)

		require.Same(t, a1, a2)
		require.NotSame(t, a1, b)
		require.Equal(t, 2, r.Len())

		snap := settle(t, a1)
		require.Equal(t, []string{"funny joke"}, snap.Display.Texts)
	})

	t.Run("concurrent first use creates once", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t)

		var (
			mu  sync.Mutex
			got = map[*viewer.Orchestrator]bool{}
			wg  sync.WaitGroup
		)
		for range 20 {
			wg.Go(func() {
				o, err := r.Get(ctx, "shared")
				if err == nil {
					mu.Lock()
					got[o] = true
					mu.Unlock()
				}
			})
		}
		wg.Wait()

		require.Len(t, got, 1)
		require.Equal(t, 1, r.Len())
	})

	t.Run("drop starts fresh", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t)

		first, err := r.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, r.Drop(ctx, "a"))
		require.ErrorIs(t, first.FetchMore(ctx), viewer.ErrClosed)

		second, err := r.Get(ctx, "a")
		require.NoError(t, err)
		require.NotSame(t, first, second)
	})
}

func TestRegistry_Eviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("idle viewers are stopped", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t, viewer.WithIdleTTL(20*time.Millisecond))

		o, err := r.Get(ctx, "idle")
		require.NoError(t, err)

		require.Eventually(t, func() bool { return r.Len() == 0 }, timeout, tick)
		require.ErrorIs(t, o.FetchMore(ctx), viewer.ErrClosed)
	})

	t.Run("capacity evicts least recently used", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t, viewer.WithMaxSessions(1))

		a, err := r.Get(ctx, "a")
		require.NoError(t, err)
		_, err = r.Get(ctx, "b")
		require.NoError(t, err)

		require.Equal(t, 1, r.Len())
		require.ErrorIs(t, a.FetchMore(ctx), viewer.ErrClosed)
	})

	t.Run("close stops everything", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(t)
		o, err := r.Get(ctx, "a")
		require.NoError(t, err)

		require.NoError(t, r.Close())
		require.ErrorIs(t, o.FetchMore(ctx), viewer.ErrClosed)

		_, err = r.Get(ctx, "a")
		require.ErrorIs(t, err, viewer.ErrClosed)
	})
}
