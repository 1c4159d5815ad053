//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transport

import (
	"net"
	"time"
)

// setSocketTimeout is a no-op on platforms without golang.org/x/sys/unix
// setsockopt support; callers still get timeout enforcement via
// net.Conn.SetDeadline on every blocking call.
func setSocketTimeout(*net.TCPConn, time.Duration) error { return nil }
