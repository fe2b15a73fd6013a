package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestTaskListMetricsLog(t *testing.T) {
	logger, hook := test.NewNullLogger()

	metrics := newTaskListMetrics(logger)
	metrics.start = metrics.start.Add(-50 * time.Millisecond)
	metrics.ObserveAuth(10 * time.Millisecond)
	metrics.ObserveFetch(15 * time.Millisecond)
	metrics.ObserveEncode(5 * time.Millisecond)
	metrics.SetTasksReturned(3)

	metrics.Log(http.StatusOK, nil)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Message != "alltasks.request.metrics" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if entry.Data["route"] != "/api/alltasks" {
		t.Fatalf("unexpected route: %v", entry.Data["route"])
	}
	if entry.Data["status"] != http.StatusOK {
		t.Fatalf("unexpected status: %v", entry.Data["status"])
	}
	if entry.Data["tasks_returned"] != 3 {
		t.Fatalf("unexpected tasks_returned: %v", entry.Data["tasks_returned"])
	}
	if total, ok := entry.Data["total_ms"].(float64); !ok || total <= 0 {
		t.Fatalf("expected positive total_ms, got %#v", entry.Data["total_ms"])
	}
	if auth, ok := entry.Data["auth_ms"].(float64); !ok || auth != 10 {
		t.Fatalf("unexpected auth_ms: %#v", entry.Data["auth_ms"])
	}
	if _, exists := entry.Data["error_stage"]; exists {
		t.Fatalf("unexpected error_stage on success: %#v", entry.Data["error_stage"])
	}
}

func TestTaskListMetricsLogWithError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	metrics := newTaskListMetrics(logger)
	metrics.SetErrorStage("storage")
	metrics.Log(http.StatusInternalServerError, errors.New("mongo down"))

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Data["error_stage"] != "storage" {
		t.Fatalf("unexpected error_stage: %v", entry.Data["error_stage"])
	}
	if entry.Data["error"] != "mongo down" {
		t.Fatalf("unexpected error field: %v", entry.Data["error"])
	}
}

func TestDurationToMillis(t *testing.T) {
	if got := durationToMillis(1500 * time.Microsecond); got != 1.5 {
		t.Fatalf("durationToMillis = %v, want 1.5", got)
	}
	if got := durationToMillis(-time.Second); got != 0 {
		t.Fatalf("negative duration should clamp to 0, got %v", got)
	}
}
