package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Send tracks one client send: a client span plus request metrics.
type Send struct {
	Client    string
	Transport string
	Method    string
	URL       string
	Proxy     string
	RequestID string
	StartTime time.Time
	Metrics   *Metrics
}

// NewSend creates a send observation. Metrics may be nil.
func NewSend(client, transport, method, url, requestID string, metrics *Metrics) *Send {
	return &Send{
		Client:    client,
		Transport: transport,
		Method:    method,
		URL:       url,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// Start opens the client span and counts the send as in flight.
func (s *Send) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanSend, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrClientName, s.Client),
		attribute.String(AttrTransport, s.Transport),
		attribute.String(AttrMethod, s.Method),
		attribute.String(AttrURL, s.URL),
		attribute.String(AttrRequestID, s.RequestID),
	)
	if s.Proxy != "" {
		span.SetAttributes(attribute.String(AttrProxy, s.Proxy))
	}
	if s.Metrics != nil {
		s.Metrics.RecordRequestStart(ctx)
	}
	return ctx, span
}

// End closes the span and records the outcome. status is 0 when no response
// arrived; errType classifies err and is ignored when err is nil.
func (s *Send) End(ctx context.Context, span trace.Span, status int, errType string, err error) {
	duration := time.Since(s.StartTime)

	if status > 0 {
		span.SetAttributes(attribute.Int(AttrStatusCode, status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorType, errType))
	}
	span.SetAttributes(attribute.Int64(AttrDurationMs, duration.Milliseconds()))
	span.End()

	if s.Metrics != nil {
		s.Metrics.RecordRequestEnd(ctx, s.Client, s.Transport, s.Method, status, duration)
		if err != nil {
			s.Metrics.RecordError(ctx, s.Client, errType)
		}
	}
}

// Duration returns the elapsed time since the send started.
func (s *Send) Duration() time.Duration {
	return time.Since(s.StartTime)
}
