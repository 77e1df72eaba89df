package viewer

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/jokeviewer/pkg/id"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
	"github.com/dmitrymomot/jokeviewer/pkg/loop"
	"github.com/dmitrymomot/jokeviewer/pkg/query"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The viewer ID is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSourceLanguage sets the catalog code of the joke language, which is
// excluded from the selectable languages. Default: DefaultSourceLanguage.
func WithSourceLanguage(code string) Option {
	return func(o *Orchestrator) {
		if code != "" {
			o.source = code
		}
	}
}

// Orchestrator runs the stages of one viewer on a dedicated loop and
// publishes snapshots of the result.
type Orchestrator struct {
	client      *query.Client
	loop        *loop.Loop
	logger      *slog.Logger
	jokes       *query.Query[JokeBatch]
	catalog     *query.Query[[]Language]
	translation *query.Query[[]string]
	selection   *Selection
	changed     chan struct{}
	observers   map[int]func(Snapshot)
	src         Sources
	id          string
	source      string
	display     Display // loop-owned
	snap        Snapshot
	nextObs     int
	mu          sync.Mutex
	crashed     bool
	started     bool
	closed      bool
}

// New creates an orchestrator for viewer id. Call Start to load data.
func New(viewerID string, client *query.Client, src Sources, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:        viewerID,
		client:    client,
		src:       src,
		logger:    logger.NewNope(),
		source:    DefaultSourceLanguage,
		changed:   make(chan struct{}),
		observers: make(map[int]func(Snapshot)),
		display:   Display{Kind: KindLoading},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(slog.String("viewer_id", viewerID))
	o.snap = Snapshot{
		Display:      o.display,
		Catalog:      Catalog{Loading: true},
		JokesLoading: true,
	}

	o.loop = loop.New(loop.WithLogger(o.logger), loop.WithPanicHandler(o.crash))
	o.jokes = query.New[JokeBatch](o.loop, client)
	o.catalog = query.New[[]Language](o.loop, client)
	o.translation = query.New[[]string](o.loop, client)
	o.selection = NewSelection(o.loop, func(string) {
		o.syncTranslation()
		o.recompute()
	})

	o.jokes.Subscribe(func(query.State[JokeBatch]) {
		o.syncTranslation()
		o.recompute()
	})
	o.catalog.Subscribe(func(query.State[[]Language]) { o.recompute() })
	o.translation.Subscribe(func(query.State[[]string]) { o.recompute() })

	return o
}

// ID returns the viewer ID.
func (o *Orchestrator) ID() string {
	return o.id
}

// Start runs the loop and issues the joke and catalog requests.
// Calling Start again is a no-op.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	go func() {
		_ = o.loop.Run(context.Background())
	}()
	return closedErr(o.loop.Post(o.mount))
}

// Snapshot returns the latest published state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Wait blocks until a snapshot newer than version is published and returns
// it. It returns the current snapshot with ctx's error on cancellation and
// with ErrClosed once the orchestrator is closed.
func (o *Orchestrator) Wait(ctx context.Context, version uint64) (Snapshot, error) {
	for {
		o.mu.Lock()
		snap, changed, closed := o.snap, o.changed, o.closed
		o.mu.Unlock()

		if snap.Version > version {
			return snap, nil
		}
		if closed {
			return snap, ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Subscribe registers fn to run on the loop after every published change.
// The returned function removes the subscription.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	o.mu.Lock()
	n := o.nextObs
	o.nextObs++
	o.observers[n] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.observers, n)
		o.mu.Unlock()
	}
}

// SelectLanguage schedules a switch to code. The code must be one of the
// catalog options; an empty code resets to the original language.
func (o *Orchestrator) SelectLanguage(ctx context.Context, code string) error {
	if code == "" {
		return o.ResetLanguage(ctx)
	}
	snap := o.Snapshot()
	idx := slices.IndexFunc(snap.Catalog.Options, func(l Language) bool {
		return strings.EqualFold(l.Code, code)
	})
	if idx < 0 {
		return ErrUnknownLanguage
	}
	return closedErr(o.selection.Select(snap.Catalog.Options[idx].Code))
}

// ResetLanguage returns to the original language, dropping a pending
// selection. The change is applied when it returns.
func (o *Orchestrator) ResetLanguage(ctx context.Context) error {
	return closedErr(o.selection.Reset(ctx))
}

// FetchMore requests a new joke batch. It is rejected with
// ErrTranslationInFlight while a translation is loading.
func (o *Orchestrator) FetchMore(ctx context.Context) error {
	var err error
	if doErr := o.loop.Do(ctx, func() {
		if o.translation.State().Fetching {
			err = ErrTranslationInFlight
			return
		}
		o.jokes.Refetch()
	}); doErr != nil {
		return closedErr(doErr)
	}
	return err
}

// Idle blocks until every queued task, including a pending language
// selection, has been applied.
func (o *Orchestrator) Idle(ctx context.Context) error {
	return closedErr(o.loop.Idle(ctx))
}

// Settle blocks until Idle and every request in flight has resolved.
func (o *Orchestrator) Settle(ctx context.Context) error {
	return closedErr(o.loop.Settle(ctx))
}

// Close stops the loop and releases waiters. Results of requests still in
// flight are dropped. Close is idempotent.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.changed)
	o.changed = make(chan struct{})
	o.mu.Unlock()

	o.client.Invalidate(o.jokesKey())
	return o.loop.Close()
}

func (o *Orchestrator) mount() {
	o.jokes.SetKey(o.jokesKey(), o.fetchJokes)
	o.catalog.SetKey("languages|"+o.source, o.fetchCatalog)
	o.recompute()
}

func (o *Orchestrator) jokesKey() string {
	return "jokes|" + o.id
}

func (o *Orchestrator) fetchJokes(ctx context.Context) (JokeBatch, error) {
	texts, err := o.src.Jokes(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "failed to fetch jokes", slog.String("error", err.Error()))
		return JokeBatch{}, err
	}
	batch := JokeBatch{ID: id.NewULID(), Jokes: make([]Joke, 0, len(texts))}
	for _, t := range texts {
		batch.Jokes = append(batch.Jokes, Joke{Text: t})
	}
	o.logger.DebugContext(ctx, "jokes fetched",
		slog.String("batch_id", batch.ID),
		slog.Int("count", len(batch.Jokes)),
	)
	return batch, nil
}

func (o *Orchestrator) fetchCatalog(ctx context.Context) ([]Language, error) {
	langs, err := o.src.Languages(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "failed to fetch languages", slog.String("error", err.Error()))
		return nil, err
	}
	langs = filterLanguages(langs, o.source)
	if len(langs) == 0 {
		o.logger.WarnContext(ctx, "language catalog is empty")
		return nil, ErrNoLanguages
	}
	return langs, nil
}

// syncTranslation points the translation stage at the current batch and
// language. Runs on the loop.
func (o *Orchestrator) syncTranslation() {
	batch := o.jokes.State().Data
	lang := o.selection.Language()
	key := TranslationKey(batch, lang)
	if key == "" {
		o.translation.SetKey("", nil)
		return
	}

	texts := batch.Texts()
	o.translation.SetKey(key, func(ctx context.Context) ([]string, error) {
		out, err := o.src.Translate(ctx, texts, lang)
		if err != nil {
			o.logger.WarnContext(ctx, "failed to translate jokes",
				slog.String("batch_id", batch.ID),
				slog.String("language", lang),
				slog.String("error", err.Error()),
			)
		}
		return out, err
	})
}

// recompute reconciles the display and publishes a snapshot. Runs on the loop.
func (o *Orchestrator) recompute() {
	js := o.jokes.State()
	ts := o.translation.State()
	cs := o.catalog.State()
	lang := o.selection.Language()

	o.display = Reconcile(o.display, Inputs{Jokes: js, Translation: ts, Language: lang})

	o.publish(Snapshot{
		Language: lang,
		BatchID:  js.Data.ID,
		Catalog: Catalog{
			Options:     cs.Data,
			Loading:     cs.Fetching || !cs.Active(),
			Unavailable: !cs.Fetching && (cs.Err != nil || (cs.HasData && len(cs.Data) == 0)),
		},
		Display:      o.display,
		Translating:  ts.Fetching,
		JokesLoading: js.Fetching,
		CanFetchMore: !ts.Fetching && !js.Fetching,
		CanReset:     lang != "" && !ts.Fetching,
	})
}

func (o *Orchestrator) publish(next Snapshot) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	next.Crashed = o.crashed
	if next.Crashed {
		next.CanFetchMore = false
		next.CanReset = false
	}
	if next.equal(o.snap) {
		o.mu.Unlock()
		return
	}
	next.Version = o.snap.Version + 1
	o.snap = next
	close(o.changed)
	o.changed = make(chan struct{})
	observers := make([]func(Snapshot), 0, len(o.observers))
	for _, fn := range o.observers {
		observers = append(observers, fn)
	}
	o.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

// crash is the loop panic handler. The viewer stays up but reports the
// failure through the snapshot.
func (o *Orchestrator) crash(value any, _ []byte) {
	o.mu.Lock()
	o.crashed = true
	snap := o.snap
	o.mu.Unlock()

	o.logger.Error("viewer crashed", slog.Any("panic", value))
	o.publish(snap)
}

func closedErr(err error) error {
	if errors.Is(err, loop.ErrClosed) {
		return ErrClosed
	}
	return err
}
