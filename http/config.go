package http

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/kestrel-http/kestrel/internal/logsink"
	"github.com/kestrel-http/kestrel/validation"
)

// ResponseClass selects the format of synthesized error/404 responses.
type ResponseClass int

const (
	ResponseClassPlain ResponseClass = iota
	ResponseClassJSON
)

// ServerConfig is the configuration surface of §6. Defaults match §3.
type ServerConfig struct {
	Host string
	Port int

	Workers        int
	MaxConnections int

	MaxRequestSize        int64
	MaxChunkSize          int64
	MaxChunkSizeDisk      int64
	MaxFileSizeInMemory   int64
	MaxFilesSizeInMemory  int64
	TmpDir                string

	TCPNoDelay bool
	RcvBufSize int
	SndBufSize int

	KeepAliveTimeout time.Duration
	ResponseClass    ResponseClass

	Logger *slog.Logger

	// LogOverflowPolicy selects the §6 logging-backend overflow behavior
	// (block / discard_oldest / discard_newest) applied once Logger is
	// wrapped through internal/logsink at server start. LogSinkCapacity is
	// the bounded queue's size; non-positive falls back to a default.
	LogOverflowPolicy logsink.OverflowPolicy
	LogSinkCapacity   int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:                 "127.0.0.1",
		Port:                 8080,
		Workers:              4,
		MaxConnections:       2048,
		MaxRequestSize:       100 * 1024 * 1024,
		MaxChunkSize:         128 * 1024,
		MaxChunkSizeDisk:     512 * 1024,
		MaxFileSizeInMemory:  1 * 1024 * 1024,
		MaxFilesSizeInMemory: 10 * 1024 * 1024,
		TmpDir:               "/tmp/kestrel",
		TCPNoDelay:           true,
		RcvBufSize:           512 * 1024,
		SndBufSize:           512 * 1024,
		KeepAliveTimeout:     30 * time.Second,
		ResponseClass:        ResponseClassPlain,
		LogOverflowPolicy:    logsink.Block,
		LogSinkCapacity:      1024,
	}
}

// Normalize applies the registration-time normalization rules of §6:
// localhost rewritten, invalid port coerced to 8080 with a logged warning,
// workers<=0 resolved to hardware concurrency. It never fails; validation
// failures that must be surfaced to the caller are reported by Validate.
func (c *ServerConfig) Normalize(logger *slog.Logger) {
	if c.Host == "localhost" {
		c.Host = "127.0.0.1"
	}
	if c.Port <= 0 || c.Port > 65535 {
		if logger != nil {
			logger.Warn("invalid port, falling back to default", "port", c.Port, "fallback", 8080)
		}
		c.Port = 8080
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.KeepAliveTimeout <= 0 {
		c.KeepAliveTimeout = 30 * time.Second
	}
}

// Validate applies teacher-idiomatic named-rule validation (reusing the
// module's own validation package, SPEC_FULL.md ambient stack) to the
// config fields with a closed set of legal values, surfacing failures to
// the registering caller per §7's "configuration errors... surfaced to the
// caller at registration time; never to the wire".
func (c *ServerConfig) Validate() validation.Violations {
	responseClassStr := "plain"
	if c.ResponseClass == ResponseClassJSON {
		responseClassStr = "json"
	}

	return validation.ValidateMap(
		map[string]any{
			"host":                []string{c.Host},
			"port":                []string{strconv.Itoa(c.Port)},
			"response_class":      []string{responseClassStr},
			"log_overflow_policy": []string{c.LogOverflowPolicy.String()},
		},
		map[string][]string{
			"host":                {"required"},
			"port":                {"required"},
			"response_class":      {"required", "in:plain,json"},
			"log_overflow_policy": {"required", "in:block,discard_oldest,discard_newest"},
		},
	)
}
