package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := NewLogUseCaseObserver(logger)
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "record-task-usage", Duration: 3 * time.Millisecond, Success: true,
		Fields: map[string]any{"task": "Draft memo"}})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "record-task-usage", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"use case\"")
	assert.Contains(t, out, "component=service")
	assert.Contains(t, out, "task=\"Draft memo\"")
	assert.Contains(t, out, "level=ERROR msg=\"use case failed\"")
	assert.Contains(t, out, "error=boom")
}

func TestNewLogUseCaseObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}
