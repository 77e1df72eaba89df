package viewer

import (
	"context"

	"github.com/dmitrymomot/jokeviewer/pkg/loop"
)

const selectTransition = "select-language"

// Selection holds the target language. Selecting is a deferred transition on
// the loop: it runs after pending stage updates and a newer selection
// replaces one that has not run yet. Resetting is immediate.
type Selection struct {
	loop     *loop.Loop
	onChange func(lang string)
	language string
}

// NewSelection creates a selection bound to l. onChange runs on the loop in
// the same task that changes the language.
func NewSelection(l *loop.Loop, onChange func(lang string)) *Selection {
	return &Selection{loop: l, onChange: onChange}
}

// Language returns the current target; empty means the original language.
// It must be called on the loop.
func (s *Selection) Language() string {
	return s.language
}

// Select schedules a switch to code.
func (s *Selection) Select(code string) error {
	return s.loop.Defer(selectTransition, func() {
		s.apply(code)
	})
}

// Pending reports whether a selection is waiting to be applied.
func (s *Selection) Pending() bool {
	return s.loop.Pending(selectTransition)
}

// Reset drops a pending selection and returns to the original language
// before returning.
func (s *Selection) Reset(ctx context.Context) error {
	s.loop.Cancel(selectTransition)
	return s.loop.Do(ctx, func() {
		s.loop.Cancel(selectTransition)
		s.apply("")
	})
}

func (s *Selection) apply(code string) {
	if code == s.language {
		return
	}
	s.language = code
	if s.onChange != nil {
		s.onChange(code)
	}
}
