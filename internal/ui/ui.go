package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/DeprecatedLuar/veil/internal/maskread"
	"github.com/DeprecatedLuar/veil/internal/termmode"
)

// Options configures a Prompter.
type Options struct {
	Mask     maskread.Mask
	Capacity int
	// Native suspends echo only and lets the terminal do the line editing.
	Native bool
	// Echo receives mask glyphs. Defaults to the prompt output.
	Echo io.Writer
	// Device overrides terminal detection on the input.
	Device termmode.Device
}

// Prompter asks for secrets on a terminal. When its input is not a terminal
// (a pipe, a file) it reads lines silently, without prompt text or echo.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	dev    termmode.Device
	opts   Options
	reader *maskread.Reader
}

// NewPrompter returns a Prompter reading from in and writing prompt text
// and warnings to out.
func NewPrompter(in io.Reader, out io.Writer, opts Options) *Prompter {
	dev := opts.Device
	if dev == nil {
		dev = termmode.DeviceFor(in)
	}
	if opts.Echo == nil {
		opts.Echo = out
	}
	if opts.Capacity <= 0 {
		opts.Capacity = maskread.MaxCapacity
	}

	p := &Prompter{in: in, out: out, dev: dev, opts: opts}
	p.reader = &maskread.Reader{
		Device:      dev,
		Echo:        opts.Echo,
		OnWarning:   func(err error) { fmt.Fprintf(out, "\nWarning: %v", err) },
		TrapSignals: dev != nil,
	}
	return p
}

// Interactive reports whether the input is a terminal.
func (p *Prompter) Interactive() bool {
	return p.dev != nil
}

// ============================================================================
// Password Prompting
// ============================================================================

// PromptPassword prompts with the default label.
func (p *Prompter) PromptPassword() (string, error) {
	return p.PromptPasswordCustom("Password: ")
}

// PromptPasswordCustom prompts with a custom message for password with hidden input.
func (p *Prompter) PromptPasswordCustom(prompt string) (string, error) {
	if p.Interactive() {
		fmt.Fprint(p.out, prompt)
	}

	var (
		secret []byte
		err    error
	)
	if p.opts.Native {
		secret, err = p.readNative()
	} else {
		secret, err = p.readMasked()
	}

	// Enter was not echoed
	if p.Interactive() {
		fmt.Fprintln(p.out)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := string(secret)
	clear(secret)
	return password, nil
}

// PromptPasswordWithConfirmation prompts twice for password confirmation.
func (p *Prompter) PromptPasswordWithConfirmation() (string, error) {
	return p.PromptPasswordWithConfirmationCustom("Enter password: ", "Confirm password: ")
}

// PromptPasswordWithConfirmationCustom prompts twice with custom messages.
func (p *Prompter) PromptPasswordWithConfirmationCustom(prompt1, prompt2 string) (string, error) {
	pwd1, err := p.PromptPasswordCustom(prompt1)
	if err != nil {
		return "", err
	}

	pwd2, err := p.PromptPasswordCustom(prompt2)
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if pwd1 != pwd2 {
		return "", fmt.Errorf("passwords do not match")
	}

	if pwd1 == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return pwd1, nil
}

// ============================================================================
// Readers
// ============================================================================

func (p *Prompter) readMasked() ([]byte, error) {
	mask := p.opts.Mask
	if !p.Interactive() {
		mask = maskread.NoEcho
	}

	_, line, err := p.reader.ReadLine(p.opts.Capacity, mask, p.in)
	return line, err
}

// readNative reads a line with echo suspended; the terminal keeps its own
// line editing, so nothing is echoed at all. The line is bounded like a
// masked one.
func (p *Prompter) readNative() ([]byte, error) {
	var (
		line      []byte
		truncated bool
	)
	err := termmode.WithEchoSuspended(p.dev, func() error {
		var err error
		line, truncated, err = readLine(p.in, p.opts.Capacity-1)
		return err
	})
	if err == nil && truncated {
		p.reader.OnWarning(fmt.Errorf("%w after %d characters", maskread.ErrTruncated, len(line)))
	}
	return line, err
}

// readLine reads up to a newline one byte at a time so that nothing past the
// line is consumed from in. At most limit bytes are kept; the rest of the
// line is drained and truncated is set.
func readLine(in io.Reader, limit int) (line []byte, truncated bool, err error) {
	line = make([]byte, 0, limit+1)
	var b [1]byte

	for {
		if _, err := io.ReadFull(in, b[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			clear(line)
			return nil, false, err
		}
		if b[0] == '\n' {
			break
		}
		if len(line) > limit {
			truncated = true
			continue
		}
		line = append(line, b[0])
	}

	// CRLF line endings from piped files
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) > limit {
		clear(line[limit:])
		line = line[:limit]
		truncated = true
	}
	return line, truncated, nil
}
