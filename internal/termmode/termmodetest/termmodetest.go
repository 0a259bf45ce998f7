// Package termmodetest provides an in-memory terminal for exercising code
// that drives termmode.Device.
package termmodetest

import (
	"errors"

	"github.com/DeprecatedLuar/veil/internal/termmode"
)

// ErrInjected is returned by a Terminal told to fail.
var ErrInjected = errors.New("injected terminal failure")

// Terminal is a fake termmode.FlushingDevice. Applied attribute sets are
// recorded in History in order; Flushed[i] tells whether History[i] was
// applied with pending input discarded.
type Terminal struct {
	State   termmode.Attrs
	History []termmode.Attrs
	Flushed []bool

	FailGet bool
	// FailSetAt makes the n-th SetAttrs call (1-based) fail. Zero never fails.
	FailSetAt int

	sets int
}

// New returns a terminal in the usual cooked state: echo and canonical mode
// on, VMIN 1, VTIME 0.
func New() *Terminal {
	return &Terminal{
		State: termmode.Attrs{Echo: true, Canonical: true, MinRead: 1},
	}
}

func (t *Terminal) Attrs() (*termmode.Attrs, error) {
	if t.FailGet {
		return nil, ErrInjected
	}
	a := t.State
	return &a, nil
}

func (t *Terminal) SetAttrs(a *termmode.Attrs) error {
	return t.set(a, false)
}

func (t *Terminal) SetAttrsFlush(a *termmode.Attrs) error {
	return t.set(a, true)
}

func (t *Terminal) set(a *termmode.Attrs, flush bool) error {
	t.sets++
	if t.FailSetAt != 0 && t.sets == t.FailSetAt {
		return ErrInjected
	}
	t.State = *a
	t.History = append(t.History, *a)
	t.Flushed = append(t.Flushed, flush)
	return nil
}

// Sets returns how many times SetAttrs was called, failed calls included.
func (t *Terminal) Sets() int {
	return t.sets
}
