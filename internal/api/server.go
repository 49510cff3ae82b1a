// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the user directory service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"userdir/internal/api/handler/v1handler"
	"userdir/internal/config"
	"userdir/internal/directory"
	"userdir/pkg/controller"
	"userdir/pkg/logger"
	"userdir/pkg/metrics"

	"github.com/go-faster/jx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

const timeoutBody = `{"code":"UNAVAILABLE","message":"request timed out"}`

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// CORSAllowedOrigin is the origin allowed by the CORS middleware.
	CORSAllowedOrigin string
	// ServeDocs exposes the OpenAPI document and Swagger UI.
	ServeDocs bool

	// TracerProvider receives the v1 request spans. Nil means the global provider.
	TracerProvider trace.TracerProvider

	// Registerer and Gatherer back the metrics endpoint. Nil means the
	// prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		CORSAllowedOrigin: cfg.HTTP.CORSAllowedOrigin,
		ServeDocs:         cfg.Environment == logger.DevelopmentEnvironment,
	}
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Directory directory.Directory
	Storage   Pinger
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - OpenTelemetry metrics exporter (Prometheus)
// - Embedded OpenAPI v1 spec and Swagger UI (development only)
// - v1 API routes, both under /v1 and unprefixed
// - health check and pprof endpoints
// It also wraps the mux with metrics, CORS and logging middlewares and applies a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	// prometheus metrics server
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// otel
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))

	if opts.ServeDocs {
		// v1 specs file
		mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(v1Spec)
		})
		// v1 api swagger playground
		mux.Handle("/v1/docs/", v5emb.New(
			"User Directory Service",
			"/specs/v1.yaml",
			"/v1/docs/",
		))
	}

	// v1 api
	v1, err := v1handler.New(v1handler.Deps{Directory: deps.Directory},
		v1handler.WithMeterProvider(mp),
		v1handler.WithTracerProvider(opts.TracerProvider))
	if err != nil {
		return nil, fmt.Errorf("could not create v1 api handler: %w", err)
	}
	v1.Register(mux, "/v1")
	v1.Register(mux, "")

	mux.HandleFunc("GET /healthz", healthz(deps.Storage))

	// pprof
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	latency, err := metrics.NewRequestDuration(reg)
	if err != nil {
		return nil, err
	}
	handler := controller.WithMetrics(latency)(mux)

	// cors
	handler = controller.WithCORS(opts.CORSAllowedOrigin)(handler)

	// logger
	handler = controller.WithLogger(handler)

	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}

func healthz(storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, state := http.StatusOK, "ok"
		if storage != nil {
			if err := storage.Ping(r.Context()); err != nil {
				logger.Warn(r.Context(), "health check failed", zap.Error(err))
				status, state = http.StatusServiceUnavailable, "unavailable"
			}
		}

		e := jx.GetEncoder()
		defer jx.PutEncoder(e)
		e.ObjStart()
		e.FieldStart("status")
		e.Str(state)
		e.ObjEnd()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write(e.Bytes())
	}
}
