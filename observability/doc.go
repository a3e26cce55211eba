// Package observability provides OpenTelemetry tracing and metrics for
// client sends.
//
// Programs usually load a Config and register a Component, which installs
// the tracer and meter providers on Start and flushes them on Stop:
//
//	observability:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4318
//
// The providers can also be installed directly. Tracing:
//
//	tcfg := observability.DefaultTracerConfig("httpkit")
//	tp, err := observability.InitTracer(ctx, &tcfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	cfg := observability.DefaultMeterConfig("httpkit")
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("httpkit"))
//
// Each Client.Send is wrapped in a Send observation, which opens a client
// span named "httpclient.send" and records request count, duration and
// errors. Clients without explicit metrics record on the global meter
// provider.
//
//	obs := observability.NewSend("billing", "stream", "GET", url, requestID, metrics)
//	ctx, span := obs.Start(ctx)
//	// ... send ...
//	obs.End(ctx, span, resp.StatusCode, "", nil)
package observability
