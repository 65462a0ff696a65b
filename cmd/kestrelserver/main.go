// Command kestrelserver is a small demo service exercising the router,
// middleware chain, streaming multipart uploads and graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrel-http/kestrel/http"
	"github.com/kestrel-http/kestrel/internal/logsink"
	"github.com/kestrel-http/kestrel/observability"
)

type greeting struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var provider *observability.Provider
	if endpoint := os.Getenv("KESTREL_OTLP_ENDPOINT"); endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		p, err := observability.NewProvider(ctx, observability.Config{
			ServiceName:    "kestrelserver",
			ServiceVersion: "dev",
			OTLPEndpoint:   endpoint,
		})
		cancel()
		if err != nil {
			logger.Warn("observability disabled: provider setup failed", "error", err)
		} else {
			provider = p
			logger = provider.NewLogger("kestrelserver")
			slog.SetDefault(logger)
		}
	}
	if provider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(ctx)
		}()
	}

	router := http.NewRouter()
	router.AddMiddleware(http.CORS(http.CORSOptions{AllowOrigin: "*"}))

	router.GET("/", func(ctx *http.Ctx) {
		resp, err := http.NewJSONValue(http.StatusOK, greeting{Message: "hello", Name: "world"})
		if err != nil {
			ctx.Response = http.NewTextResponse(http.StatusInternalServerError, "encoding failure")
			return
		}
		ctx.Response = resp
	})

	router.GET("/users/{id}", func(ctx *http.Ctx) {
		id := ctx.Param("id")
		resp, err := http.NewJSONValue(http.StatusOK, greeting{Message: "user", Name: id})
		if err != nil {
			ctx.Response = http.NewTextResponse(http.StatusInternalServerError, "encoding failure")
			return
		}
		ctx.Response = resp
	})

	router.GETAsync("/slow", func(ctx *http.Ctx) <-chan struct{} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			time.Sleep(50 * time.Millisecond)
			ctx.Response = http.NewTextResponse(http.StatusOK, "eventually")
		}()
		return done
	})

	router.POST("/greet", func(ctx *http.Ctx) {
		var g greeting
		if err := ctx.BindJSON(&g); err != nil {
			ctx.Response = http.NewTextResponse(http.StatusBadRequest, "invalid json body")
			return
		}
		resp, err := http.NewJSONValue(http.StatusOK, greeting{Message: "echo", Name: g.Name})
		if err != nil {
			ctx.Response = http.NewTextResponse(http.StatusInternalServerError, "encoding failure")
			return
		}
		ctx.Response = resp
	})

	router.POST("/upload", func(ctx *http.Ctx) {
		file, ok := ctx.File("payload")
		if !ok {
			ctx.Response = http.NewTextResponse(http.StatusBadRequest, "missing payload field")
			return
		}
		size, alive := file.Size()
		if !alive {
			ctx.Response = http.NewTextResponse(http.StatusInternalServerError, "file already released")
			return
		}
		resp, err := http.NewJSONValue(http.StatusOK, map[string]any{
			"filename": file.Filename,
			"size":     size,
			"inMemory": file.InMemory,
		})
		if err != nil {
			ctx.Response = http.NewTextResponse(http.StatusInternalServerError, "encoding failure")
			return
		}
		ctx.Response = resp
	})

	router.Group("/admin", func(g *http.Router) {
		g.GET("/health", func(ctx *http.Ctx) {
			ctx.Response = http.NewTextResponse(http.StatusOK, "ok")
		})
	}, http.Recover(logger))

	config := http.DefaultServerConfig()
	config.Logger = logger
	if port := os.Getenv("KESTREL_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if policy := os.Getenv("KESTREL_LOG_OVERFLOW"); policy != "" {
		p, err := logsink.ParseOverflowPolicy(policy)
		if err != nil {
			logger.Warn("ignoring invalid KESTREL_LOG_OVERFLOW", "value", policy, "error", err)
		} else {
			config.LogOverflowPolicy = p
		}
	}

	server := http.NewServer("kestrelserver", router, config)
	server.Observability = provider

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	if err := server.ListenAndServe(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
