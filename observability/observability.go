// Package observability wires kestrel's request path into the OpenTelemetry
// SDK: traces and metrics exported over OTLP/gRPC, and a slog.Logger bridged
// onto the OTel log pipeline via otelslog. It is optional — a nil *Provider
// disables instrumentation entirely rather than requiring callers to check
// a feature flag at every call site.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config configures the OTLP exporters. Endpoint is a bare host:port; TLS is
// disabled for now since the reference deployments sit behind a service mesh
// sidecar that terminates it.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
	DialTimeout    time.Duration
}

// Provider bundles the tracer, meter and logger providers plus the request
// counters the connection worker updates per request.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider

	Tracer trace.Tracer

	requestCounter  metric.Int64Counter
	bytesInCounter  metric.Int64Counter
	bytesOutCounter metric.Int64Counter
}

func statusClassAttr(class string) attribute.KeyValue {
	return attribute.String("kestrel.status_class", class)
}

func dialConn(ctx context.Context, cfg Config) (*grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout(cfg))
	defer cancel()

	var conn *grpc.ClientConn
	op := func() error {
		c, err := grpc.NewClient(cfg.OTLPEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), dialCtx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("observability: dialing collector %s: %w", cfg.OTLPEndpoint, err)
	}
	return conn, nil
}

func dialTimeout(cfg Config) time.Duration {
	if cfg.DialTimeout > 0 {
		return cfg.DialTimeout
	}
	return 5 * time.Second
}

// NewProvider builds tracer, meter and logger providers backed by OTLP/gRPC
// exporters pointed at cfg.OTLPEndpoint, registers the tracer and meter
// providers globally via otel.SetTracerProvider/otel.SetMeterProvider, and
// returns a Provider the server can attach to its request path.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	conn, err := dialConn(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: building resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("observability: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("observability: metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)

	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("observability: log exporter: %w", err)
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(cfg.ServiceName)
	requestCounter, err := meter.Int64Counter("kestrel.requests",
		metric.WithDescription("count of HTTP requests handled, by status class"))
	if err != nil {
		return nil, fmt.Errorf("observability: request counter: %w", err)
	}
	bytesIn, err := meter.Int64Counter("kestrel.bytes_read",
		metric.WithDescription("bytes read from client connections"))
	if err != nil {
		return nil, fmt.Errorf("observability: bytes_read counter: %w", err)
	}
	bytesOut, err := meter.Int64Counter("kestrel.bytes_written",
		metric.WithDescription("bytes written to client connections"))
	if err != nil {
		return nil, fmt.Errorf("observability: bytes_written counter: %w", err)
	}

	return &Provider{
		tracerProvider:  tp,
		meterProvider:   mp,
		loggerProvider:  lp,
		Tracer:          tp.Tracer(cfg.ServiceName),
		requestCounter:  requestCounter,
		bytesInCounter:  bytesIn,
		bytesOutCounter: bytesOut,
	}, nil
}

// NewLogger returns a slog.Logger bridged onto the OTel log pipeline. Kept
// separate from NewProvider so callers can decide whether requests should
// log through OTel, stderr, or both.
func (p *Provider) NewLogger(name string) *slog.Logger {
	return otelslog.NewLogger(name, otelslog.WithLoggerProvider(p.loggerProvider))
}

// RecordRequest increments the request counter for the given status class
// ("2xx", "4xx", "5xx", ...) and adds the read/written byte counts.
func (p *Provider) RecordRequest(ctx context.Context, statusClass string, bytesIn, bytesOut int64) {
	if p == nil {
		return
	}
	attrs := metric.WithAttributes(statusClassAttr(statusClass))
	p.requestCounter.Add(ctx, 1, attrs)
	p.bytesInCounter.Add(ctx, bytesIn)
	p.bytesOutCounter.Add(ctx, bytesOut)
}

// StartSpan starts a span named after the request method and route, no-op
// when p is nil so it's safe to call unconditionally from the request path.
func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name)
}

// Shutdown flushes and closes all three providers. Errors are joined so a
// single failing exporter doesn't hide the others.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := p.loggerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("observability: shutdown errors: %v", errs)
}
