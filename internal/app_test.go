package internal_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jokeviewer/internal"
	"github.com/dmitrymomot/jokeviewer/pkg/htmx"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
)

type text string

func (t text) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func header(name, value string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetHeader(name, c.Response().Header().Get(name)+value)
			return next(c)
		}
	}
}

func TestApp_Routing(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithMiddleware(header("X-Order", "a")),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/hello/{name}", func(c internal.Context) error {
				return c.String(http.StatusOK, "hello "+c.Param("name"))
			})
			r.POST("/echo", func(c internal.Context) error {
				return c.String(http.StatusCreated, c.Form("msg"))
			}, header("X-Order", "b"), header("X-Order", "c"))
			r.Route("/api", func(r internal.Router) {
				r.GET("/state", func(c internal.Context) error {
					return c.JSON(http.StatusOK, map[string]int{"version": 3})
				})
			})
		})),
	)

	t.Run("url params", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/hello/world", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "hello world", rec.Body.String())
		require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("middleware order", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("msg=hi"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(t, app, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "hi", rec.Body.String())
		require.Equal(t, "abc", rec.Header().Get("X-Order"))
	})

	t.Run("route groups and json", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/api/state", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"version":3}`, rec.Body.String())
	})
}

func TestApp_Errors(t *testing.T) {
	t.Parallel()

	handlers := routes(func(r internal.Router) {
		r.GET("/conflict", func(c internal.Context) error {
			return fmt.Errorf("more: %w", c.Error(http.StatusConflict, "busy"))
		})
		r.GET("/boom", func(c internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/late", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "partial")
			return errors.New("late")
		})
	})

	t.Run("default handler uses status", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(handlers))

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/conflict", nil))
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = serve(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		app := internal.New(
			internal.WithHandlers(handlers),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				return c.String(http.StatusTeapot, "handled: "+err.Error())
			}),
		)

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
		require.Equal(t, "handled: boom", rec.Body.String())
	})

	t.Run("written responses are left alone", func(t *testing.T) {
		t.Parallel()

		app := internal.New(
			internal.WithHandlers(handlers),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				t.Error("error handler must not run")
				return nil
			}),
		)

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/late", nil))
		require.Equal(t, "partial", rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "nothing here")
		}))

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "nothing here", rec.Body.String())
	})
}

func TestContext_Render(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/page", func(c internal.Context) error {
			return c.RenderPartial(http.StatusConflict, text("<html>full</html>"), text("<div>part</div>"),
				htmx.WithTrigger("refreshed"),
			)
		})
		r.GET("/go", func(c internal.Context) error {
			return c.Redirect("/")
		})
	})))

	t.Run("full page keeps status", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/page", nil))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "<html>full</html>", rec.Body.String())
		require.Empty(t, rec.Header().Get(htmx.HeaderHXTrigger))
	})

	t.Run("htmx partial is swapped with 200", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/page", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		rec := serve(t, app, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "<div>part</div>", rec.Body.String())
		require.Equal(t, "refreshed", rec.Header().Get(htmx.HeaderHXTrigger))
	})

	t.Run("redirect", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/go", nil))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})
}

type ctxKey struct{}

func TestContext_Values(t *testing.T) {
	t.Parallel()

	tr := i18n.NewTranslator(mustI18n(t), "ru", "ui")

	app := internal.New(
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				c.Set(ctxKey{}, "stored")
				if c.Query("tr") != "" {
					c.Set(internal.TranslatorKey{}, tr)
				}
				return next(c)
			}
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				return c.JSON(http.StatusOK, map[string]any{
					"value":    internal.ContextValue[string](c, ctxKey{}),
					"missing":  internal.ContextValue[int](c, struct{}{}),
					"title":    c.T("title"),
					"language": c.Language(),
					"version":  internal.QueryDefault[uint64](c, "v", 7),
				})
			})
		})),
	)

	t.Run("without translator", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/?v=nope", nil))
		require.JSONEq(t, `{"value":"stored","missing":0,"title":"title","language":"","version":7}`, rec.Body.String())
	})

	t.Run("with translator", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/?tr=1&v=12", nil))
		require.JSONEq(t, `{"value":"stored","missing":0,"title":"Шутки","language":"ru","version":12}`, rec.Body.String())
	})
}

func mustI18n(t *testing.T) *i18n.I18n {
	t.Helper()

	i, err := i18n.New(
		i18n.WithDefaultLanguage("en"),
		i18n.WithTranslations("en", "ui", i18n.M{"title": "Jokes"}),
		i18n.WithTranslations("ru", "ui", i18n.M{"title": "Шутки"}),
	)
	require.NoError(t, err)
	return i
}

func TestApp_Health(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessCheck("jokes", func(context.Context) error { return nil }),
		internal.WithOptionalCheck("translate", func(context.Context) error { return errors.New("down") }),
	))

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Degraded", rec.Body.String())
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			return c.String(http.StatusOK, "up")
		})
	})))

	ctx, cancel := context.WithCancel(context.Background())
	addrs := make(chan net.Addr, 1)
	hooked := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- app.Run(
			internal.Address("127.0.0.1:0"),
			internal.WithContext(ctx),
			internal.OnListen(func(a net.Addr) { addrs <- a }),
			internal.ShutdownTimeout(time.Second),
			internal.ShutdownHook(func(context.Context) error {
				close(hooked)
				return nil
			}),
		)
	}()

	addr := <-addrs
	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "up", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-hooked:
	default:
		t.Fatal("shutdown hook did not run")
	}
}
