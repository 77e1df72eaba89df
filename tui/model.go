package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

// actionTimeout bounds one user action against the orchestrator.
const actionTimeout = 10 * time.Second

// Controller is the part of *viewer.Orchestrator the model drives.
type Controller interface {
	Snapshot() viewer.Snapshot
	Subscribe(fn func(viewer.Snapshot)) (unsubscribe func())
	SelectLanguage(ctx context.Context, code string) error
	ResetLanguage(ctx context.Context) error
	FetchMore(ctx context.Context) error
}

// Translator supplies UI strings. *i18n.Translator satisfies it.
type Translator interface {
	T(key string, placeholders ...i18n.M) string
	Tn(key string, n int, placeholders ...i18n.M) string
}

// SnapshotMsg delivers a published orchestrator snapshot.
type SnapshotMsg viewer.Snapshot

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	err error
}

// Model is the bubbletea model.
type Model struct {
	ctrl        Controller
	tr          Translator
	updates     chan viewer.Snapshot
	unsubscribe func()
	spinner     spinner.Model
	snap        viewer.Snapshot
	err         error
	cursor      int // 0 is the original language, i is Options[i-1]
}

// New subscribes to ctrl. Call Close when the program exits.
func New(ctrl Controller, tr Translator) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	m := &Model{
		ctrl:    ctrl,
		tr:      tr,
		updates: make(chan viewer.Snapshot, 1),
		spinner: sp,
	}
	// Only the loop goroutine sends, so after draining there is room.
	m.unsubscribe = ctrl.Subscribe(func(s viewer.Snapshot) {
		select {
		case <-m.updates:
		default:
		}
		m.updates <- s
	})
	m.snap = ctrl.Snapshot()
	m.cursor = m.selectedIndex()
	return m
}

// Close removes the subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// Snapshot returns the snapshot currently shown.
func (m *Model) Snapshot() viewer.Snapshot {
	return m.snap
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(<-m.updates)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = viewer.Snapshot(msg)
		m.cursor = min(m.cursor, len(m.snap.Catalog.Options))
		return m, m.listen()

	case actionMsg:
		// A refetch during translation is simply ignored, as the web
		// surface disables the button.
		if msg.err != nil && !errors.Is(msg.err, viewer.ErrTranslationInFlight) {
			m.err = msg.err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Catalog.Options) {
			m.cursor++
		}
	case "enter":
		if m.snap.Translating || m.snap.Catalog.Loading {
			return nil
		}
		if m.cursor == 0 {
			return m.action(m.ctrl.ResetLanguage)
		}
		code := m.snap.Catalog.Options[m.cursor-1].Code
		return m.action(func(ctx context.Context) error {
			return m.ctrl.SelectLanguage(ctx, code)
		})
	case "r":
		m.cursor = 0
		return m.action(m.ctrl.ResetLanguage)
	case "m":
		if !m.snap.CanFetchMore {
			return nil
		}
		return m.action(m.ctrl.FetchMore)
	}
	return nil
}

func (m *Model) action(fn func(ctx context.Context) error) tea.Cmd {
	m.err = nil
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionMsg{err: fn(ctx)}
	}
}

func (m *Model) selectedIndex() int {
	for i, l := range m.snap.Catalog.Options {
		if l.Code == m.snap.Language {
			return i + 1
		}
	}
	return 0
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.tr.T("title")))
	b.WriteString("\n")

	if m.snap.Crashed || m.err != nil {
		b.WriteString(warningStyle.Render(m.tr.T("unexpected-error")))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(m.tr.T("tui.help")))
		return b.String()
	}

	m.viewLanguages(&b)
	b.WriteString("\n")
	m.viewJokes(&b)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.tr.T("tui.help")))
	return b.String()
}

func (m *Model) viewLanguages(b *strings.Builder) {
	cat := m.snap.Catalog
	switch {
	case cat.Loading:
		fmt.Fprintf(b, "%s %s\n", m.spinner.View(), m.tr.T("select-translation"))
		return
	case cat.Unavailable:
		b.WriteString(warningStyle.Render(m.tr.T("translation-error")))
		b.WriteString("\n")
		return
	}

	b.WriteString(mutedStyle.Render(m.tr.T("select-translation")))
	b.WriteString("\n")
	m.viewOption(b, 0, m.tr.T("tui.original"), m.snap.Language == "")
	for i, l := range cat.Options {
		m.viewOption(b, i+1, l.Name, l.Code == m.snap.Language)
	}
	if m.snap.Translating {
		fmt.Fprintf(b, "%s %s\n", m.spinner.View(), m.tr.T("translating"))
	}
}

func (m *Model) viewOption(b *strings.Builder, idx int, name string, selected bool) {
	pointer := "  "
	if idx == m.cursor {
		pointer = "> "
	}
	mark := "( ) "
	if selected {
		mark = "(•) "
		name = selectedStyle.Render(name)
	}
	b.WriteString(pointer + mark + name + "\n")
}

func (m *Model) viewJokes(b *strings.Builder) {
	d := m.snap.Display
	switch d.Kind {
	case viewer.KindLoading:
		fmt.Fprintf(b, "%s %s\n", m.spinner.View(), m.tr.T("jokes-loading"))
		return
	case viewer.KindUnavailable:
		b.WriteString(warningStyle.Render(m.tr.T("jokes-error")))
		b.WriteString("\n")
		return
	}

	if d.TranslationWarning {
		b.WriteString(warningStyle.Render(m.tr.T("translation-error")))
		b.WriteString("\n")
	}
	for i, joke := range d.Texts {
		b.WriteString(jokeStyle.Render(fmt.Sprintf("%d. %s", i+1, joke)))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(m.tr.Tn("jokes-count", len(d.Texts))))
	b.WriteString("\n")
}

// Run shows the model until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, tr Translator, opts ...tea.ProgramOption) error {
	m := New(ctrl, tr)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
