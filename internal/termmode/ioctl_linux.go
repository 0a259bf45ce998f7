//go:build aix || linux || solaris || zos

package termmode

import "golang.org/x/sys/unix"

const (
	ioctlReadTermios       = unix.TCGETS
	ioctlWriteTermios      = unix.TCSETS
	ioctlWriteTermiosFlush = unix.TCSETSF
)
