// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

// Package bridgeotel provides OpenTelemetry instrumentation for the
// model-hook bridge. It implements the [bridge.InvokeHook] interface to
// add tracing and metrics around every call into the foreign session.
//
// Usage:
//
//	p := bridge.NewPredictor(
//		bridge.WithInvokeHook(bridgeotel.NewInvokeHook(bridgeotel.DefaultConfig())),
//	)
package bridgeotel

import (
	"context"
	"time"

	"github.com/andreakropp/datarobot-user-models/bridge"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "model_hook_bridge"

// Config configures OpenTelemetry instrumentation for a predictor.
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for failed invokes.
	// Default true.
	RecordExceptions bool
	// ServiceName is the rpc.service attribute value.
	ServiceName string
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns a Config with sensible defaults. Providers are
// resolved from the global OTel SDK at hook construction time.
func DefaultConfig() Config {
	return Config{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// NewInvokeHook builds an InvokeHook that traces and measures every
// foreign invoke.
func NewInvokeHook(cfg Config) bridge.InvokeHook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ModelHookBridge"
	}

	hook := &otelHook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}
	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		hook.invokeCounter, _ = meter.Int64Counter("bridge.foreign.invokes",
			metric.WithUnit("{invoke}"),
			metric.WithDescription("Number of foreign hook invokes"),
		)
		hook.durationHistogram, _ = meter.Float64Histogram("bridge.foreign.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of foreign hook invokes"),
		)
	}
	return hook
}

// otelHook implements bridge.InvokeHook with OpenTelemetry tracing and
// metrics.
type otelHook struct {
	cfg               Config
	tracer            trace.Tracer
	invokeCounter     metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// spanToken is the HookToken returned by OnInvokeStart.
type spanToken struct {
	span      trace.Span
	startTime time.Time
}

// OnInvokeStart starts an internal span for the foreign call.
func (h *otelHook) OnInvokeStart(ctx context.Context, info bridge.InvokeInfo) (context.Context, bridge.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{startTime: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("rpc.system", instrumentationName),
		attribute.String("rpc.service", h.cfg.ServiceName),
		attribute.String("rpc.method", info.Hook),
		attribute.String("bridge.target_type", info.TargetType),
		attribute.String("bridge.call_id", info.CallID),
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, "foreign_invoke/"+info.Hook,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &spanToken{span: span, startTime: time.Now()}
}

// OnInvokeEnd records metrics and span status and ends the span.
func (h *otelHook) OnInvokeEnd(ctx context.Context, token bridge.HookToken, info bridge.InvokeInfo, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}
	duration := time.Since(st.startTime)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if h.cfg.EnableMetrics {
		metricAttrs := metric.WithAttributes(
			attribute.String("rpc.system", instrumentationName),
			attribute.String("rpc.service", h.cfg.ServiceName),
			attribute.String("rpc.method", info.Hook),
			attribute.String("bridge.target_type", info.TargetType),
			attribute.String("status", status),
		)
		if h.invokeCounter != nil {
			h.invokeCounter.Add(ctx, 1, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, duration.Seconds(), metricAttrs)
		}
	}

	if st.span != nil && st.span.IsRecording() {
		if err != nil {
			st.span.SetStatus(codes.Error, err.Error())
			if h.cfg.RecordExceptions {
				st.span.RecordError(err)
			}
			errType := "error"
			if be, ok := err.(*bridge.BridgeError); ok {
				errType = string(be.Kind)
			}
			st.span.SetAttributes(attribute.String("bridge.error_kind", errType))
		} else {
			st.span.SetStatus(codes.Ok, "")
		}
		st.span.End()
	}
}
