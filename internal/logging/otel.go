package logging

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// otelScope is the instrumentation scope of bridged log records.
const otelScope = "github.com/fyrsmithlabs/docchat"

// newDualCore writes to w and, when lp is non-nil, also emits every record
// at or above cfg.Level to lp. Both outputs redact cfg.RedactFields.
func newDualCore(cfg *Config, w zapcore.WriteSyncer, lp log.LoggerProvider) zapcore.Core {
	encoder := NewRedactingEncoder(newEncoder(cfg.Format), cfg.RedactFields)
	core := zapcore.NewCore(encoder, w, cfg.Level)

	if lp != nil {
		otelCore := otelzap.NewCore(otelScope, otelzap.WithLoggerProvider(lp))
		core = zapcore.NewTee(core, &levelFilterCore{
			Core:     &redactingCore{Core: otelCore, keys: newKeySet(cfg.RedactFields)},
			minLevel: cfg.Level,
			hasMin:   true,
		})
	}

	return newSampledCore(core, cfg.Sampling)
}

// redactingCore blanks sensitive fields before they reach a core that does
// not encode through RedactingEncoder.
type redactingCore struct {
	zapcore.Core
	keys keySet
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.keys.redact(fields)), keys: c.keys}
}

func (c *redactingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *redactingCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(e, c.keys.redact(fields))
}
