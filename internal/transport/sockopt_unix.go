//go:build linux || darwin || freebsd || netbsd || openbsd

package transport

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// setSocketTimeout sets SO_RCVTIMEO and SO_SNDTIMEO on conn's underlying
// file descriptor, giving genuine per-syscall timeout semantics that a
// single Go-level deadline does not reproduce (a deadline is wall-clock,
// not reset by the kernel on every syscall). Best-effort: any failure to
// reach the raw fd or to apply the option is returned to the caller, who
// logs it and continues relying on SetDeadline alone.
func setSocketTimeout(conn *net.TCPConn, d time.Duration) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	tv := unix.NsecToTimeval(d.Nanoseconds())
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		if err := unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			sockErr = err
			return
		}
		if err := unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
			sockErr = err
			return
		}
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}
