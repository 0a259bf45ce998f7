//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris || zos

package termmode

import (
	"os"

	"golang.org/x/sys/unix"
)

type ttyDevice struct {
	fd int
}

// FromFile returns the Device controlling f.
func FromFile(f *os.File) Device {
	return &ttyDevice{fd: int(f.Fd())}
}

func (d *ttyDevice) Attrs() (*Attrs, error) {
	t, err := unix.IoctlGetTermios(d.fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}

	return &Attrs{
		Echo:      t.Lflag&unix.ECHO != 0,
		Canonical: t.Lflag&unix.ICANON != 0,
		MinRead:   t.Cc[unix.VMIN],
		Timeout:   t.Cc[unix.VTIME],
		sys:       *t,
	}, nil
}

func (d *ttyDevice) SetAttrs(a *Attrs) error {
	return d.apply(a, false)
}

func (d *ttyDevice) SetAttrsFlush(a *Attrs) error {
	return d.apply(a, true)
}

func (d *ttyDevice) apply(a *Attrs, flush bool) error {
	t, ok := a.sys.(unix.Termios)
	if !ok {
		cur, err := unix.IoctlGetTermios(d.fd, ioctlReadTermios)
		if err != nil {
			return err
		}
		t = *cur
	}

	if a.Echo {
		t.Lflag |= unix.ECHO
	} else {
		t.Lflag &^= unix.ECHO
	}
	if a.Canonical {
		t.Lflag |= unix.ICANON
	} else {
		t.Lflag &^= unix.ICANON
	}
	t.Cc[unix.VMIN] = a.MinRead
	t.Cc[unix.VTIME] = a.Timeout

	// Request constants stay untyped: the ioctl argument type differs by OS
	if flush {
		return unix.IoctlSetTermios(d.fd, ioctlWriteTermiosFlush, &t)
	}
	return unix.IoctlSetTermios(d.fd, ioctlWriteTermios, &t)
}
