package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// RedactingEncoder wraps a zapcore.Encoder and blanks fields whose key is
// listed as sensitive. Both per-entry fields and fields attached through
// With are covered.
type RedactingEncoder struct {
	zapcore.Encoder
	keys keySet
}

// NewRedactingEncoder wraps base so that the given keys are redacted.
func NewRedactingEncoder(base zapcore.Encoder, keys []string) *RedactingEncoder {
	return &RedactingEncoder{Encoder: base, keys: newKeySet(keys)}
}

func (e *RedactingEncoder) sensitive(key string) bool {
	return e.keys.sensitive(key)
}

// keySet holds lower-cased sensitive field keys.
type keySet map[string]bool

func newKeySet(keys []string) keySet {
	m := make(keySet, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = true
	}
	return m
}

func (k keySet) sensitive(key string) bool {
	return k[strings.ToLower(key)]
}

// redact returns fields unchanged when none is sensitive, otherwise a copy
// with sensitive values replaced. The caller's slice is never modified.
func (k keySet) redact(fields []zapcore.Field) []zapcore.Field {
	for i, f := range fields {
		if !k.sensitive(f.Key) {
			continue
		}
		out := make([]zapcore.Field, len(fields))
		copy(out, fields)
		for j := i; j < len(out); j++ {
			if k.sensitive(out[j].Key) {
				out[j] = zap.String(out[j].Key, redacted)
			}
		}
		return out
	}
	return fields
}

// Clone keeps the redaction rules on child encoders.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{Encoder: e.Encoder.Clone(), keys: e.keys}
}

// EncodeEntry redacts sensitive per-entry fields before encoding.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	return e.Encoder.EncodeEntry(ent, e.keys.redact(fields))
}

// AddString redacts sensitive keys attached through With.
func (e *RedactingEncoder) AddString(key, val string) {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddString(key, val)
}

// AddByteString redacts sensitive keys attached through With.
func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddByteString(key, val)
}

// AddReflected redacts sensitive keys attached through With.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}
