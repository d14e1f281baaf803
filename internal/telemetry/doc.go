// Package telemetry wires OpenTelemetry tracing and metrics for pestid.
//
// Spans and instruments are created through the global otel providers, so
// packages call otel.Tracer and otel.Meter directly. New installs OTLP
// exporters as the global providers when telemetry is enabled and leaves
// the no-op defaults in place otherwise.
//
//	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability, version), logger)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Exporter failures never stop the service: the instance is marked
// degraded and tracing falls back to no-op.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
