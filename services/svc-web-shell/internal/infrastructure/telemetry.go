package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	exporterTypeGRPC   = "grpc"
	exporterTypeStdOut = "stdout"
)

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// NewTracerProvider builds the provider used by the inbound tracer middleware
// and the backend client transport. Disabled traces yield a noop provider.
func NewTracerProvider(cfg *config.ServiceConfig) (trace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Telemetry.Traces.Enabled {
		return NewNoopTracerProvider(), func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()

	traceExporter, err := createExporter(ctx, cfg.Telemetry, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	tp := newSDKTracerProvider(traceExporter, res, cfg.Telemetry.Traces.SamplerRatio)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

// NewNoopTracerProvider creates a no-op tracer provider for when tracing is disabled.
func NewNoopTracerProvider() trace.TracerProvider {
	return noop.NewTracerProvider()
}

func newSDKTracerProvider(exporter sdktrace.SpanExporter, res *resource.Resource, ratio float64) *sdktrace.TracerProvider {
	sampler := sdktrace.TraceIDRatioBased(ratio)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sampler,
			sdktrace.WithRemoteParentSampled(sampler),
		)),
	)
}

func newResource(ctx context.Context, cfg *config.ServiceConfig) (*resource.Resource, error) {
	hostName, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get host name: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("env", cfg.App.Env.Name),
			attribute.String("host", hostName),
			attribute.String("commit_sha", config.CommitSHA),
			attribute.String("product", cfg.App.ProductName),
			attribute.String("Product-Cluster", cfg.Telemetry.OtelProductCluster),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	return res, nil
}

func createExporter(ctx context.Context, cfg config.Telemetry, stdout io.Writer) (exporter sdktrace.SpanExporter, err error) {
	switch strings.ToLower(cfg.ExporterType) {
	case exporterTypeGRPC:
		exporter, err = createGRPCExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC exporter: %w", err)
		}
	case exporterTypeStdOut:
		exporter, err = createStdOutExporter(stdout)
		if err != nil {
			return nil, fmt.Errorf("failed to create StdOut exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported exporter type %q", cfg.ExporterType)
	}

	return exporter, nil
}

func createGRPCExporter(ctx context.Context, cfg config.Telemetry) (*otlptrace.Exporter, error) {
	conn, err := grpc.NewClient(
		net.JoinHostPort(cfg.OtelGRPCHost, cfg.OtelGRPCPort),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create a gRPC client connection to collector: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create a gRPC trace exporter: %w", err)
	}

	return traceExporter, nil
}

func createStdOutExporter(w io.Writer) (*stdouttrace.Exporter, error) {
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create an StdOut trace exporter: %w", err)
	}

	return traceExporter, nil
}
