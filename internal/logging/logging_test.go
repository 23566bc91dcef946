package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewVerboseWritesDebugEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(true, &buf)

	logger.Debug("task submitted", zap.String("task_id", "task-1"))
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "task submitted")
	assert.Contains(t, buf.String(), "task-1")
	assert.Contains(t, buf.String(), "DEBUG")
}

func TestNewQuietDiscardsEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(false, &buf)

	logger.Debug("task submitted")
	logger.Error("boom")
	_ = logger.Sync()

	assert.Empty(t, buf.String())
}
