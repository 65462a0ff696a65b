package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kestrel-http/kestrel/filesystem"
	"github.com/kestrel-http/kestrel/internal/logsink"
	"github.com/kestrel-http/kestrel/observability"
	"github.com/kestrel-http/kestrel/scheduler"
)

// Server owns the listener, the router/middleware chain, and the worker
// runtime, per §4.7/§4.6. It is the lifetime root: connections hold a
// reference to it only for the duration of serveConn.
type Server struct {
	Name   string
	router *Router
	config ServerConfig
	chain  Handler

	listener net.Listener
	fs       filesystem.Filesystem
	sweeper  *scheduler.Scheduler
	logSink  *logsink.Sink

	// Observability, when non-nil, spans and counts every request. A nil
	// value disables instrumentation without any call site needing to check.
	Observability *observability.Provider

	mu       sync.Mutex
	started  bool
	stopping bool
	stopCh   chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewServer(name string, router *Router, config ServerConfig) *Server {
	config.Normalize(config.Logger)
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	sink := logsink.NewSink(config.LogSinkCapacity, config.LogOverflowPolicy)
	config.Logger = logsink.NewLogger(config.Logger, sink)

	return &Server{
		Name:    name,
		router:  router,
		config:  config,
		fs:      filesystem.NewLocalFileSystem(),
		logSink: sink,
		stopCh:  make(chan struct{}),
	}
}

// acceptorCount implements the exact partition formula of §4.7.
func acceptorCount(workers int) int {
	switch {
	case workers <= 4:
		return 1
	case workers <= 16:
		return maxInt(2, workers/6)
	default:
		return maxInt(3, workers/8)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// generalWorkerCount returns workers-acceptors, clamped to at least 1.
func generalWorkerCount(workers, acceptors int) int {
	n := workers - acceptors
	if n < 1 {
		n = 1
	}
	return n
}

// ListenAndServe validates config, creates tmp_dir, freezes the middleware
// chain, binds the listener, and runs until Shutdown is called or an
// unrecoverable accept error occurs, per §6's start()/stop()/wait().
func (s *Server) ListenAndServe() error {
	if violations := s.config.Validate(); !violations.IsEmpty() {
		return fmt.Errorf("http: invalid server config: %v", violations.Errors)
	}
	if err := s.fs.CreateDirectory(s.config.TmpDir); err != nil {
		return fmt.Errorf("http: creating tmp_dir: %w", err)
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("http: server already started")
	}
	s.started = true
	s.router.locked = true
	// Recover always runs first regardless of what the caller registered:
	// the core dispatch contract (§4.2/§4.6) does not depend on every
	// caller remembering to add it themselves.
	chain := append([]Middleware{Recover(s.config.Logger)}, s.router.Middleware()...)
	s.chain = buildChain(chain, s.coreHandler())
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return fmt.Errorf("http: listen: %w", err)
	}
	if tl, ok := ln.(*net.TCPListener); ok {
		configureListener(tl, s.config)
	}
	s.listener = ln

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case <-sigCh:
			_ = s.Shutdown(context.Background())
		case <-ctx.Done():
		}
	}()

	workers := s.config.Workers
	acceptors := acceptorCount(workers)
	if workers == 1 {
		acceptors = 1
	}
	general := generalWorkerCount(workers, acceptors)
	_ = general // general worker count informs pool sizing; connections are
	// dispatched onto goroutines rather than a fixed OS-thread pool, since
	// the Go runtime's scheduler already multiplexes goroutines onto
	// GOMAXPROCS threads the way the source's shared io_ctx reactor does.

	if s.config.Logger != nil {
		s.config.Logger.Info("listening", "addr", addr, "acceptors", acceptors, "workers", workers)
	}

	for i := 0; i < acceptors; i++ {
		s.wg.Add(1)
		go s.acceptLoop(ctx, ln)
	}

	sweepInterval := s.config.KeepAliveTimeout * 4
	if sweepInterval < time.Minute {
		sweepInterval = time.Minute
	}
	s.sweeper = scheduler.NewScheduler()
	s.sweeper.AddJob(*scheduler.NewJob().
		WithInterval(sweepInterval).
		WithTasks(*scheduler.NewTask(sweepTmpDir, s.fs, s.config.TmpDir, sweepInterval, s.config.Logger)))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sweeper.Run(ctx)
	}()

	s.wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if s.config.Logger != nil {
				s.config.Logger.Warn("accept error", "error", err)
			}
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(s.config.TCPNoDelay)
			if s.config.RcvBufSize > 0 {
				_ = tc.SetReadBuffer(s.config.RcvBufSize)
			}
			if s.config.SndBufSize > 0 {
				_ = tc.SetWriteBuffer(s.config.SndBufSize)
			}
			setQuickAck(tc)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// Shutdown is idempotent (§4.7/§6): cancels the acceptor, closes the
// listener, and lets in-flight workers finish their current write before
// the process unblocks from ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	close(s.stopCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logSink.Close()
		return nil
	case <-ctx.Done():
		s.logSink.Close()
		return ctx.Err()
	}
}
