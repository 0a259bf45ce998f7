//go:build !aix && !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !solaris && !zos

package termmode

import (
	"fmt"
	"os"
	"runtime"
)

type unsupportedDevice struct{}

// FromFile returns a Device whose every call fails: terminal attributes are
// only driven through termios.
func FromFile(*os.File) Device {
	return unsupportedDevice{}
}

func (unsupportedDevice) Attrs() (*Attrs, error) {
	return nil, fmt.Errorf("terminal attributes not supported on %s", runtime.GOOS)
}

func (unsupportedDevice) SetAttrs(*Attrs) error {
	return fmt.Errorf("terminal attributes not supported on %s", runtime.GOOS)
}
