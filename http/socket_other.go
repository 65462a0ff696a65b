//go:build !linux

package http

import "net"

// configureListener is a no-op on non-Linux platforms: REUSEPORT and
// TCP_FASTOPEN are Linux-specific in this implementation (§4.7 says "where
// available").
func configureListener(ln *net.TCPListener, cfg ServerConfig) {}

// setQuickAck is a no-op outside Linux; TCP_QUICKACK has no portable
// equivalent.
func setQuickAck(tc *net.TCPConn) {}
