package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/alexandrebha/cybook/circulation/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: lock_book", "book_id", "978-1")
	logger.InfoContext(ctx, "circulation operation: borrow")
	logger.WarnContext(ctx, "failed to close database rows")
	logger.ErrorContext(ctx, "circulation operation failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"book_id":"978-1"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"error":"boom"`)
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	// act
	logger := oteladapters.NewSlogBridgeLogger("cybook")

	// assert
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "no provider configured")
	})
}

// recordingLogger captures emitted records.
type recordingLogger struct {
	noop.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record.Clone())
}

func recordAttributes(record log.Record) map[string]string {
	attrs := make(map[string]string)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.String()
		return true
	})

	return attrs
}

func Test_OTelLogger_EmitsRecordsWithSeverityAndAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.ErrorContext(
		context.Background(),
		"circulation operation failed",
		"operation", "borrow",
		"user_id", int64(7),
		"error", errors.New("connection refused"),
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityError, record.Severity())
	assert.Equal(t, "circulation operation failed", record.Body().AsString())

	attrs := recordAttributes(record)
	assert.Equal(t, "borrow", attrs["operation"])
	assert.Equal(t, "7", attrs["user_id"])
	assert.Equal(t, "connection refused", attrs["error"])
	assert.NotContains(t, attrs, "dangling")
}

func Test_OTelLogger_SeverityPerLevel(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	// assert
	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}
