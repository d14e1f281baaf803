package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
)

type recordExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordExporter) ForceFlush(context.Context) error { return nil }

func (e *recordExporter) Shutdown(context.Context) error { return nil }

func (e *recordExporter) attrs(body string) map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.records {
		if r.Body().AsString() != body {
			continue
		}
		out := make(map[string]string)
		r.WalkAttributes(func(kv log.KeyValue) bool {
			out[kv.Key] = kv.Value.AsString()
			return true
		})
		return out
	}
	return nil
}

func newOTELLogger(t *testing.T, exp *recordExporter) *Logger {
	t.Helper()
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	cfg := NewDefaultConfig()
	cfg.Output.Stdout = false
	cfg.Output.OTEL = true
	logger, err := NewLogger(cfg, lp)
	require.NoError(t, err)
	return logger
}

func TestNewLogger_OTELBridge(t *testing.T) {
	exp := &recordExporter{}
	logger := newOTELLogger(t, exp)

	ctx := WithRequestID(context.Background(), "req-7")
	logger.Info(ctx, "tracking entry created", zap.String("pest", "Aphids"))

	attrs := exp.attrs("tracking entry created")
	require.NotNil(t, attrs, "record not exported")
	assert.Equal(t, "Aphids", attrs["pest"])
	assert.Equal(t, "req-7", attrs["request.id"])
}

func TestNewLogger_OTELBridgeRedacts(t *testing.T) {
	exp := &recordExporter{}
	logger := newOTELLogger(t, exp).Underlying().With(zap.String("token", "t0k3n"))

	logger.Info("calling model",
		zap.String("api_key", "plain-key"),
		zap.String("upload", "data:image/png;base64,iVBORw0KGgo="),
	)

	attrs := exp.attrs("calling model")
	require.NotNil(t, attrs, "record not exported")
	assert.Equal(t, "[REDACTED]", attrs["api_key"])
	assert.Equal(t, "[REDACTED:pattern]", attrs["upload"])
	assert.Equal(t, "[REDACTED]", attrs["token"])
}
