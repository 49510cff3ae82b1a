// Package v1handler serves version 1 of the user directory HTTP API.
package v1handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"userdir/internal/directory"
	"userdir/pkg/logger"
	"userdir/pkg/serrors"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "userdir/internal/api/handler/v1handler"

// Deps are the services the handler delegates to.
type Deps struct {
	Directory directory.Directory
}

type options struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
}

// Option customises a Handler.
type Option func(*options)

// WithMeterProvider sets the provider used for request metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithTracerProvider sets the provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithPropagator sets how trace context is read from request headers.
// Defaults to W3C Trace Context.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(o *options) {
		if p != nil {
			o.propagator = p
		}
	}
}

type Handler struct {
	deps Deps

	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Handler. Metrics and spans go to the global otel providers
// unless overridden by options.
func New(deps Deps, opts ...Option) (*Handler, error) {
	o := options{
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		propagator:     propagation.TraceContext{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	requests, err := meter.Int64Counter("userdir.server.request_count",
		metric.WithDescription("Number of handled requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("could not create request counter: %w", err)
	}
	duration, err := meter.Float64Histogram("userdir.server.duration",
		metric.WithDescription("Duration of handled requests"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &Handler{
		deps:     deps,
		tracer:     o.tracerProvider.Tracer(instrumentationName),
		propagator: o.propagator,
		requests:   requests,
		duration:   duration,
	}, nil
}

// Register mounts the v1 routes on mux below prefix, e.g. "/v1" or "".
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/users/{userName}", h.GetUser)
	// an empty name never matches the wildcard above, answer it with a 400 instead of a 404
	mux.HandleFunc("GET "+prefix+"/users/{$}", h.GetUser)
	mux.HandleFunc("POST "+prefix+"/users", h.CreateUser(prefix))
}

// ErrorStatusCode is a rendered error: the HTTP status and the body to send.
type ErrorStatusCode struct {
	StatusCode int
	Response   Error
}

var defaultMessages = map[serrors.Kind]string{ //nolint: gochecknoglobals
	serrors.ErrInvalidInput: "invalid input",
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrConflict:     "resource already exists",
	serrors.ErrUnavailable:  "storage unavailable",
	serrors.ErrInternal:     "internal error",
}

var statusCodes = map[serrors.Kind]int{ //nolint: gochecknoglobals
	serrors.ErrInvalidInput: http.StatusBadRequest,
	serrors.ErrNotFound:     http.StatusNotFound,
	serrors.ErrConflict:     http.StatusConflict,
	serrors.ErrUnavailable:  http.StatusServiceUnavailable,
	serrors.ErrInternal:     http.StatusInternalServerError,
}

// NewError renders err. The message of a semantic error is passed through;
// internal and storage failures get a fixed message so causes do not leak.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	status, ok := statusCodes[kind]
	if !ok {
		kind, status = serrors.ErrInternal, http.StatusInternalServerError
	}

	msg := defaultMessages[kind]
	var semantic *serrors.Error
	if kind != serrors.ErrInternal && kind != serrors.ErrUnavailable &&
		errors.As(err, &semantic) && semantic.Message() != "" {
		msg = semantic.Message()
	}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else if logger.IsDebug(ctx) {
		logger.Debug(ctx, "request rejected", zap.String("code", kind.Error()), zap.Error(err))
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response: Error{
			Code:    kind.Error(),
			Message: msg,
		},
	}
}

// encoder is implemented by every wire type.
type encoder interface {
	Encode(e *jx.Encoder)
}

func writeJSON(w http.ResponseWriter, status int, body encoder) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	body.Encode(e)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) int {
	res := h.NewError(ctx, err)
	writeJSON(w, res.StatusCode, &res.Response)

	return res.StatusCode
}

// observe starts a span for operation, continuing any trace carried by the
// request headers, and returns the function that ends it and records the
// request metrics.
func (h *Handler) observe(r *http.Request, operation string) (context.Context, func(status int, err error)) {
	start := time.Now()
	ctx := h.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := h.tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("userdir.operation", operation)))

	return ctx, func(status int, err error) {
		attrs := metric.WithAttributes(
			attribute.String("userdir.operation", operation),
			attribute.Int("http.response.status_code", status))
		h.requests.Add(ctx, 1, attrs)
		h.duration.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), attrs)

		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if err != nil && status >= http.StatusInternalServerError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
