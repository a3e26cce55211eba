package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.RecordRequestStart(ctx)
	m.RecordRequestEnd(ctx, "default", "stream", "GET", 200, time.Millisecond)
	m.RecordError(ctx, "default", "TIMEOUT")
}

func TestMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.RecordRequestStart(ctx)
	m.RecordRequestEnd(ctx, "default", "native", "POST", 201, 20*time.Millisecond)
	m.RecordError(ctx, "default", "CONNECTION_ERROR")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	for _, want := range []string{"httpclient.requests", "httpclient.request.duration", "httpclient.requests.active", "httpclient.errors"} {
		if !names[want] {
			t.Errorf("metric %s not recorded; got %v", want, names)
		}
	}
}

func TestSend_Success(t *testing.T) {
	sr := recordSpans(t)

	obs := NewSend("billing", "stream", "GET", "http://example.com/", "req-1", nil)
	obs.Proxy = "proxy.example:3128"
	ctx, span := obs.Start(context.Background())
	if !span.SpanContext().IsValid() {
		t.Fatal("expected a valid span in context")
	}
	obs.End(ctx, span, 200, "", nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanSend {
		t.Errorf("expected span %q, got %q", SpanSend, s.Name())
	}
	checks := map[string]string{
		AttrClientName: "billing",
		AttrTransport:  "stream",
		AttrMethod:     "GET",
		AttrURL:        "http://example.com/",
		AttrRequestID:  "req-1",
		AttrProxy:      "proxy.example:3128",
	}
	for k, want := range checks {
		if v, ok := spanAttr(s, k); !ok || v.AsString() != want {
			t.Errorf("attribute %s: got %v, want %q", k, v.Emit(), want)
		}
	}
	if v, ok := spanAttr(s, AttrStatusCode); !ok || v.AsInt64() != 200 {
		t.Errorf("expected status attribute 200, got %v", v.Emit())
	}
	if s.Status().Code == codes.Error {
		t.Error("successful send should not mark the span as error")
	}
}

func TestSend_Error(t *testing.T) {
	sr := recordSpans(t)
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))

	obs := NewSend("default", "native", "POST", "http://example.com/", "req-2", m)
	ctx, span := obs.Start(context.Background())
	obs.End(ctx, span, 0, "TIMEOUT", fmt.Errorf("deadline exceeded"))

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status())
	}
	if v, ok := spanAttr(s, AttrErrorType); !ok || v.AsString() != "TIMEOUT" {
		t.Errorf("expected error type TIMEOUT, got %v", v.Emit())
	}
	if _, ok := spanAttr(s, AttrStatusCode); ok {
		t.Error("status attribute should be absent without a response")
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestSend_NoProxyAttribute(t *testing.T) {
	sr := recordSpans(t)

	obs := NewSend("default", "stream", "GET", "http://example.com/", "req-3", nil)
	ctx, span := obs.Start(context.Background())
	obs.End(ctx, span, 204, "", nil)

	if _, ok := spanAttr(sr.Ended()[0], AttrProxy); ok {
		t.Error("proxy attribute should be omitted when no proxy is used")
	}
}

func TestSend_Duration(t *testing.T) {
	obs := NewSend("default", "stream", "GET", "", "", nil)
	time.Sleep(5 * time.Millisecond)
	if obs.Duration() < 5*time.Millisecond {
		t.Errorf("expected duration >= 5ms, got %v", obs.Duration())
	}
}

func TestStartSpan(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "test-span")
	if !span.SpanContext().IsValid() {
		t.Error("expected valid span context")
	}
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	if got := sr.Ended()[0].Status().Code; got != codes.Error {
		t.Errorf("expected error status, got %v", got)
	}
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("no span"))
}

func TestTracerAndMeter(t *testing.T) {
	if Tracer("test") == nil {
		t.Error("expected non-nil tracer")
	}
	if Meter("test") == nil {
		t.Error("expected non-nil meter")
	}
}

func TestInitTracerSamplingRates(t *testing.T) {
	for _, rate := range []float64{1.0, 0.5, 0} {
		t.Run(fmt.Sprintf("rate %.1f", rate), func(t *testing.T) {
			cfg := DefaultTracerConfig("test")
			cfg.SampleRate = rate
			tp, err := InitTracer(context.Background(), &cfg)
			if err != nil {
				t.Skipf("InitTracer failed (resource schema conflict): %v", err)
			}
			defer shutdown(t, tp.Shutdown)
		})
	}
}

func TestInitMeter(t *testing.T) {
	cfg := DefaultMeterConfig("test")
	cfg.Interval = 0

	mp, err := InitMeter(context.Background(), &cfg)
	if err != nil {
		t.Skipf("InitMeter failed (resource schema conflict): %v", err)
	}
	defer shutdown(t, mp.Shutdown)
}

// shutdown bounds exporter flushes; no collector listens during tests.
func shutdown(t *testing.T, fn func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = fn(ctx)
}
