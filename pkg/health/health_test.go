package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/pkg/health"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("down") }

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, health.StatusHealthy, health.Run(ctx, nil).Status)
	})

	t.Run("critical failure is unhealthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(ctx, health.Checks{"jokeapi": fail, "other": ok})
		require.Equal(t, health.StatusUnhealthy, resp.Status)
		require.Equal(t, "down", resp.Checks["jokeapi"].Error)
		require.Equal(t, health.StatusHealthy, resp.Checks["other"].Status)
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(ctx,
			health.Checks{"jokeapi": ok},
			health.WithOptional(health.Checks{"deepl": fail}),
		)
		require.Equal(t, health.StatusDegraded, resp.Status)
		require.Equal(t, health.StatusDegraded, resp.Checks["deepl"].Status)
	})

	t.Run("timeout cancels slow checks", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		resp := health.Run(ctx, health.Checks{"slow": slow}, health.WithTimeout(10*time.Millisecond))
		require.Equal(t, health.StatusUnhealthy, resp.Status)
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("readiness json", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{"jokeapi": fail})
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp health.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, health.StatusUnhealthy, resp.Status)
	})

	t.Run("degraded stays ready", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(nil, health.WithOptional(health.Checks{"deepl": fail}))
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Degraded", rec.Body.String())
	})
}
