package maskread

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DeprecatedLuar/veil/internal/termmode"
)

// MaxCapacity is the hard ceiling on a line buffer, terminator slot included.
// Larger requests are clamped to it.
const MaxCapacity = 200

const (
	keyDelete  = 127
	keyNewline = '\n'
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTruncated is never returned: it reaches Reader.OnWarning when the
	// buffer filled up before a newline ended the line.
	ErrTruncated = errors.New("input truncated")
)

// eraseSeq moves back over one mask glyph and blanks it.
var eraseSeq = []byte{'\b', ' ', '\b'}

// Mask selects what is echoed per accepted keystroke: a printable ASCII
// character, or nothing for any other value.
type Mask int

const (
	NoEcho      Mask = 0
	DefaultMask Mask = '*'
)

// Printable reports whether m is echoed.
func (m Mask) Printable() bool {
	return m >= 0x20 && m <= 0x7e
}

// Reader reads masked lines.
type Reader struct {
	// Device is switched to raw edit mode for the duration of a read.
	// Nil means the input is not a terminal and is read as is.
	Device termmode.Device
	// Echo receives mask glyphs and erase sequences. Nil discards them.
	Echo io.Writer
	// OnWarning receives non-fatal conditions (ErrTruncated).
	// Nil prints them to stderr.
	OnWarning func(error)
	// TrapSignals restores the terminal if the process is interrupted
	// mid-read.
	TrapSignals bool
}

// ForInput returns a Reader for in that echoes to stdout. Raw mode is used
// only when in is a terminal.
func ForInput(in io.Reader) *Reader {
	dev := termmode.DeviceFor(in)
	return &Reader{
		Device:      dev,
		Echo:        os.Stdout,
		TrapSignals: dev != nil,
	}
}

// ReadLine reads one line of at most capacity-1 bytes from in.
// It returns the number of bytes accepted and the line without terminator;
// on failure the count is -1.
func (r *Reader) ReadLine(capacity int, mask Mask, in io.Reader) (int, []byte, error) {
	if capacity <= 0 {
		return -1, nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}

	return r.ReadInto(make([]byte, capacity), mask, in)
}

// ReadInto is ReadLine over a caller-owned buffer whose length is the
// capacity. A nil buf gets a MaxCapacity buffer; a longer one is clamped.
// The returned line aliases buf.
func (r *Reader) ReadInto(buf []byte, mask Mask, in io.Reader) (n int, line []byte, err error) {
	if buf == nil {
		buf = make([]byte, MaxCapacity)
	}
	if len(buf) == 0 {
		return -1, nil, fmt.Errorf("%w: zero-length buffer", ErrInvalidArgument)
	}
	if len(buf) > MaxCapacity {
		buf = buf[:MaxCapacity]
	}
	if in == nil {
		return -1, nil, fmt.Errorf("%w: no input stream", ErrInvalidArgument)
	}

	if r.Device != nil {
		s, enterErr := termmode.Enter(r.Device)
		if enterErr != nil {
			return -1, nil, fmt.Errorf("failed to enter raw mode: %w", enterErr)
		}
		if r.TrapSignals {
			stop := s.RestoreOnSignal()
			defer stop()
		}
		defer func() {
			if exitErr := s.Exit(); exitErr != nil && err == nil {
				clear(buf)
				n, line, err = -1, nil, fmt.Errorf("failed to exit raw mode: %w", exitErr)
			}
		}()
	}

	idx, truncated, err := r.edit(buf, mask, in)
	if err != nil {
		clear(buf)
		return -1, nil, fmt.Errorf("failed to read input: %w", err)
	}

	if truncated {
		r.warn(fmt.Errorf("%w after %d characters", ErrTruncated, idx))
	}

	return idx, buf[:idx], nil
}

// edit runs the read/edit/echo loop until a newline or end of input.
// The byte at idx is zeroed on return; truncated reports that bytes were
// dropped at the limit, or that input ended on a full buffer without a newline.
func (r *Reader) edit(buf []byte, mask Mask, in io.Reader) (idx int, truncated bool, err error) {
	limit := len(buf) - 1
	dropped := false
	newline := false
	var b [1]byte

loop:
	for {
		if _, err := io.ReadFull(in, b[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, false, err
		}

		switch c := b[0]; {
		case c == keyNewline:
			newline = true
			break loop
		case c == keyDelete:
			if idx > 0 {
				idx--
				buf[idx] = 0
				r.echo(mask, eraseSeq)
			}
		case idx < limit:
			buf[idx] = c
			idx++
			r.echo(mask, []byte{byte(mask)})
		default:
			dropped = true
		}
	}

	buf[idx] = 0
	return idx, dropped || (idx == limit && !newline), nil
}

func (r *Reader) echo(mask Mask, p []byte) {
	if r.Echo == nil || !mask.Printable() {
		return
	}
	_, _ = r.Echo.Write(p)
}

func (r *Reader) warn(err error) {
	if r.OnWarning != nil {
		r.OnWarning(err)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
}

// ============================================================================
// Convenience entry points
// ============================================================================

// ReadMaskedLine reads a masked line from in, using raw mode when in is a
// terminal and echoing to stdout.
func ReadMaskedLine(capacity int, mask Mask, in io.Reader) (int, []byte, error) {
	return ForInput(in).ReadLine(capacity, mask, in)
}

// ReadPassword reads up to MaxCapacity-1 bytes from stdin, echoing '*'.
// Truncation is reported on stderr only.
func ReadPassword() ([]byte, error) {
	_, line, err := ReadMaskedLine(MaxCapacity, DefaultMask, os.Stdin)
	return line, err
}
