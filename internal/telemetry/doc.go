// Package telemetry provides OpenTelemetry tracing and metrics export for
// docchat.
//
// # Usage
//
//	cfg := telemetry.NewDefaultConfig()
//	cfg.Enabled = true
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
// New installs the providers globally, so package-level tracers and meters
// obtained through otel.Tracer and otel.Meter export through them.
//
// # Error Handling
//
// Telemetry failures do not crash the application. If an exporter cannot be
// created the instance is marked degraded and the global no-op providers
// stay in place.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
