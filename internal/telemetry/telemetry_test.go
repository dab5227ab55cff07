package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Healthy)
	assert.False(t, tel.Health().Degraded)

	// No-op providers still hand out usable tracers and meters.
	_, span := tel.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.NotNil(t, tel.Meter("test"))
	assert.Nil(t, tel.LoggerProvider())

	assert.NoError(t, tel.ForceFlush(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_EnabledInstallsProviders(t *testing.T) {
	for _, protocol := range []string{"grpc", "http/protobuf"} {
		t.Run(protocol, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			cfg.Protocol = protocol
			cfg.ShutdownTimeout = 200 * time.Millisecond

			// Exporters connect lazily, so no collector is needed.
			tel, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.True(t, tel.IsEnabled())
			assert.False(t, tel.Health().Degraded)
			assert.NotNil(t, tel.tracerProvider)
			assert.NotNil(t, tel.meterProvider)
			assert.NotNil(t, tel.LoggerProvider())

			// Export to the absent collector may fail; only the state change matters.
			_ = tel.Shutdown(context.Background())
			assert.False(t, tel.IsEnabled())
		})
	}
}

func TestNew_LogsDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.LogsEnabled = false
	cfg.ShutdownTimeout = 200 * time.Millisecond

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, tel.LoggerProvider())
	assert.NotNil(t, tel.tracerProvider)

	_ = tel.Shutdown(context.Background())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Degraded)
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
	assert.NotNil(t, tel.Tracer("test"))
	assert.Nil(t, tel.LoggerProvider())
}

func TestTelemetry_SetDegradedRecordsReason(t *testing.T) {
	tel := &Telemetry{config: NewDefaultConfig()}
	tel.healthy.Store(true)

	tel.setDegraded(errorf("trace", assert.AnError))

	h := tel.Health()
	assert.True(t, h.Degraded)
	require.Len(t, h.Reasons, 1)
	assert.Contains(t, h.Reasons[0], "creating trace exporter")
}

func TestTestTelemetry_Spans(t *testing.T) {
	tt := NewTestTelemetry()

	_, span := tt.Tracer("test").Start(context.Background(), "index.build")
	span.SetAttributes(attribute.Int("units", 3), attribute.String("session.id", "s1"))
	span.End()

	tt.AssertSpanExists(t, "index.build")
	tt.AssertSpanAttribute(t, "index.build", "units", int64(3))
	tt.AssertSpanAttribute(t, "index.build", "session.id", "s1")
	assert.Nil(t, tt.SpanByName("missing"))

	tt.Reset()
	assert.Empty(t, tt.Spans())
}

func TestTestTelemetry_Metrics(t *testing.T) {
	tt := NewTestTelemetry()

	counter, err := tt.Meter("test").Int64Counter("docchat.test.calls")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)
	counter.Add(context.Background(), 3)

	md := tt.MetricByName(t, "docchat.test.calls")
	require.NotNil(t, md)
	sum, ok := md.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)

	assert.Nil(t, tt.MetricByName(t, "docchat.test.absent"))
}

func TestTestTelemetry_Logs(t *testing.T) {
	tt := NewTestTelemetry()

	var rec log.Record
	rec.SetBody(log.StringValue("session created"))
	rec.SetSeverity(log.SeverityInfo)
	rec.AddAttributes(log.String("session.id", "s1"))
	tt.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	logs := tt.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "session created", logs[0].Body().AsString())
	assert.Equal(t, log.SeverityInfo, logs[0].Severity())

	var found bool
	logs[0].WalkAttributes(func(kv log.KeyValue) bool {
		if kv.Key == "session.id" {
			found = kv.Value.AsString() == "s1"
			return false
		}
		return true
	})
	assert.True(t, found)

	tt.Reset()
	assert.Empty(t, tt.Logs())
}
