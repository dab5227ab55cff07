// Package logging provides structured, context-aware logging on top of Zap.
//
// # Overview
//
// The package wraps Zap with:
//   - A custom Trace level (-2, below Debug)
//   - Automatic context field injection (trace_id, span_id, session.id, request.id)
//   - Field-name redaction for credentials passed to model providers
//   - Level-aware sampling (errors are never sampled)
//   - An optional OTLP bridge via otelzap (NewLoggerWithProvider)
//
// # Usage
//
//	cfg, err := logging.NewConfig("info", "json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//
//	ctx = logging.WithSessionID(ctx, "abc123")
//	logger.Info(ctx, "chat answered", zap.Int("history", 3))
//
// # Testing
//
// TestLogger records entries in memory:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "index built", zap.Int("units", 12))
//	tl.AssertLogged(t, zapcore.InfoLevel, "index built")
package logging
