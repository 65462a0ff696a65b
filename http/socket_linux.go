//go:build linux

package http

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureListener sets REUSEADDR/REUSEPORT and TCP_FASTOPEN on the
// listening socket where available, per §4.7. Failures are best-effort:
// the original only logs a warning and keeps going.
func configureListener(ln *net.TCPListener, cfg ServerConfig) {
	sc, err := ln.SyscallConn()
	if err != nil {
		return
	}
	_ = sc.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN, 256)
	})
}

// setQuickAck sets TCP_QUICKACK on Linux per-accepted-socket, per §4.7.
func setQuickAck(tc *net.TCPConn) {
	sc, err := tc.SyscallConn()
	if err != nil {
		return
	}
	_ = sc.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	})
}
