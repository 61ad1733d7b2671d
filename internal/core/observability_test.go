package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"frontdesk/pkg/domain"
)

func TestNoopLogger(_ *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "key", "value")
	logger.Info("info", "key", "value")
	logger.Warn("warn", "key", "value")
	logger.Error("error", "key", "value")
}

func TestZapLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))
	svc := NewInMemoryService(WithClock(newTestClock("2024-01-01", "08:00")), WithLogger(logger))
	if _, _, err := svc.AddRoom(context.Background(), domain.Room{Base: domain.Base{ID: "R1"}, Name: "One"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	entries := logs.FilterMessage("room added").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["room_id"]; got != "R1" {
		t.Fatalf("expected room_id field, got %v", got)
	}
	if _, ok := NewZapLogger(nil).(noopLogger); !ok {
		t.Fatal("expected nil zap logger to yield noop")
	}
}

func TestPrometheusRecorderCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc := NewInMemoryService(WithClock(newTestClock("2024-01-01", "08:00")), WithMetrics(recorder))
	ctx := context.Background()
	if _, _, err := svc.AddRoom(ctx, domain.Room{Base: domain.Base{ID: "R1"}, Name: "One"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, "missing", domain.StatusCleaning); err == nil {
		t.Fatal("expected failure")
	}
	if got := testutil.ToFloat64(recorder.operations.WithLabelValues("change_status", "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.operations.WithLabelValues("change_status", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	recorder.Observe(ctx, "manual", true, time.Millisecond)
	if count := testutil.CollectAndCount(recorder.latency); count != 3 {
		t.Fatalf("expected 3 latency series, got %d", count)
	}
}
