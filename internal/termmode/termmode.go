package termmode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// ErrTerminalControl wraps every failure of the attribute get/set primitives.
var ErrTerminalControl = errors.New("terminal control failed")

// exitFunc terminates the process after an interrupted session was restored.
var exitFunc = os.Exit

// ============================================================================
// Attributes
// ============================================================================

// Attrs is a snapshot of a terminal's configuration.
// Only the fields the controller mutates are exposed; the rest of the
// platform attribute block travels along untouched so that re-applying a
// snapshot restores the terminal bit for bit.
type Attrs struct {
	Echo      bool  // characters are echoed by the terminal
	Canonical bool  // line-buffered input with native editing
	MinRead   uint8 // VMIN: bytes a non-canonical read waits for
	Timeout   uint8 // VTIME: inter-byte timeout in tenths of a second

	sys any
}

func (a *Attrs) clone() *Attrs {
	c := *a
	return &c
}

// Device is a terminal whose attributes can be read and written.
type Device interface {
	Attrs() (*Attrs, error)
	SetAttrs(*Attrs) error
}

// FlushingDevice is a Device that can also apply attributes after pending
// input has been discarded. Echo suspension and its restore use it when
// available so that type-ahead is not read with the wrong echo setting.
type FlushingDevice interface {
	Device
	SetAttrsFlush(*Attrs) error
}

// setAttrs applies a, discarding pending input first when flush is set and
// dev supports it.
func setAttrs(dev Device, a *Attrs, flush bool) error {
	if fd, ok := dev.(FlushingDevice); ok && flush {
		return fd.SetAttrsFlush(a)
	}
	return dev.SetAttrs(a)
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// DeviceFor returns the terminal behind r, or nil when r is not a terminal
// (a pipe, a file, an in-memory reader).
func DeviceFor(r io.Reader) Device {
	f, ok := r.(*os.File)
	if !ok || !IsTerminal(f) {
		return nil
	}
	return FromFile(f)
}

// ============================================================================
// Sessions
// ============================================================================

// Session is an open modification of a terminal. It owns the snapshot taken
// before the modification and is the only way to undo it.
type Session struct {
	dev   Device
	saved *Attrs
	flush bool

	once sync.Once
	err  error
}

// Enter switches dev to raw edit mode: echo and canonical mode off, reads
// return after one byte with no inter-byte timeout.
// The returned session must be closed with Exit.
func Enter(dev Device) (*Session, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: no terminal device", ErrTerminalControl)
	}

	saved, err := dev.Attrs()
	if err != nil {
		return nil, fmt.Errorf("%w: get attributes: %w", ErrTerminalControl, err)
	}

	raw := saved.clone()
	raw.Echo = false
	raw.Canonical = false
	raw.MinRead = 1
	raw.Timeout = 0

	if err := dev.SetAttrs(raw); err != nil {
		// A failed set may still have been partially applied.
		_ = dev.SetAttrs(saved)
		return nil, fmt.Errorf("%w: set attributes: %w", ErrTerminalControl, err)
	}

	return &Session{dev: dev, saved: saved}, nil
}

// SuspendEcho turns echo off on dev and leaves canonical line editing alone.
// Pending input is discarded on the way in and on the way out. Failures are swallowed: the returned session is then inert and Restore
// does nothing.
func SuspendEcho(dev Device) *Session {
	if dev == nil {
		return &Session{}
	}

	saved, err := dev.Attrs()
	if err != nil {
		return &Session{}
	}

	silent := saved.clone()
	silent.Echo = false
	_ = setAttrs(dev, silent, true)

	return &Session{dev: dev, saved: saved, flush: true}
}

// Exit re-applies the snapshot taken when the session was opened.
// Only the first call touches the terminal; later calls return its result.
func (s *Session) Exit() error {
	if s == nil || s.saved == nil {
		return nil
	}

	s.once.Do(func() {
		if err := setAttrs(s.dev, s.saved, s.flush); err != nil {
			s.err = fmt.Errorf("%w: restore attributes: %w", ErrTerminalControl, err)
		}
	})
	return s.err
}

// Restore is Exit without the error, for sessions opened with SuspendEcho.
func (s *Session) Restore() {
	_ = s.Exit()
}

// Saved returns a copy of the snapshot, or nil for an inert session.
func (s *Session) Saved() *Attrs {
	if s == nil || s.saved == nil {
		return nil
	}
	return s.saved.clone()
}

// RestoreOnSignal restores the terminal and exits the process if one of sigs
// (default: interrupt and SIGTERM) arrives while the session is open.
// Call stop once the session is closed.
func (s *Session) RestoreOnSignal(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case <-ch:
			_ = s.Exit()
			signal.Stop(ch)
			exitFunc(130)
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

// ============================================================================
// Scoped helpers
// ============================================================================

// WithRaw runs fn with dev in raw edit mode and restores the prior
// attributes on every way out of fn, panics included.
// A restore failure is reported only if fn itself succeeded.
func WithRaw(dev Device, fn func() error) (err error) {
	s, err := Enter(dev)
	if err != nil {
		return err
	}
	defer func() {
		if exitErr := s.Exit(); exitErr != nil && err == nil {
			err = exitErr
		}
	}()

	return fn()
}

// WithEchoSuspended runs fn with echo off and native line editing still on.
// Like SuspendEcho it never fails on terminal errors.
func WithEchoSuspended(dev Device, fn func() error) error {
	s := SuspendEcho(dev)
	defer s.Restore()

	return fn()
}
