package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tradekeep/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap/zaptest"
)

type fakeExecutor struct {
	called     bool
	scheduleID string
	retErr     error
}

func (f *fakeExecutor) ExecuteScheduled(ctx context.Context, scheduleID string) error {
	f.called = true
	f.scheduleID = scheduleID
	return f.retErr
}

func TestPublishHandlerHandleScheduledPublish_Success(t *testing.T) {
	executor := &fakeExecutor{}
	h := NewPublishHandler(executor, zaptest.NewLogger(t))
	ctx := context.Background()
	payload, _ := json.Marshal(tasks.ScheduledPublishPayload{ScheduleID: "sched-1"})
	task := asynq.NewTask(tasks.TypeScheduledPublish, payload)
	if err := h.HandleScheduledPublish(ctx, task); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !executor.called || executor.scheduleID != "sched-1" {
		t.Fatalf("executor not invoked correctly: called=%v id=%s", executor.called, executor.scheduleID)
	}
}

func TestPublishHandlerHandleScheduledPublish_ExecuteError(t *testing.T) {
	expectedErr := errors.New("boom")
	executor := &fakeExecutor{retErr: expectedErr}
	h := NewPublishHandler(executor, zaptest.NewLogger(t))
	ctx := context.Background()
	payload, _ := json.Marshal(tasks.ScheduledPublishPayload{ScheduleID: "sched-2"})
	task := asynq.NewTask(tasks.TypeScheduledPublish, payload)
	if err := h.HandleScheduledPublish(ctx, task); !errors.Is(err, expectedErr) {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
}

func TestPublishHandlerHandleScheduledPublish_InvalidPayload(t *testing.T) {
	executor := &fakeExecutor{}
	h := NewPublishHandler(executor, zaptest.NewLogger(t))
	ctx := context.Background()
	task := asynq.NewTask(tasks.TypeScheduledPublish, []byte("not-json"))
	if err := h.HandleScheduledPublish(ctx, task); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
	if executor.called {
		t.Fatalf("executor should not be called when payload invalid")
	}
}
