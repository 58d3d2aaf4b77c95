package shutdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandlerNotShuttingDownInitially(t *testing.T) {
	h := NewHandler()
	assert.False(t, h.ShuttingDown())
	select {
	case <-h.Done():
		t.Fatal("Done() must not be closed before shutdown is triggered")
	default:
	}
}

func TestTriggerShutdownClosesDoneIdempotently(t *testing.T) {
	h := NewHandler()
	h.TriggerForTest()
	assert.True(t, h.ShuttingDown())

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() must be closed after shutdown is triggered")
	}

	assert.NotPanics(t, func() { h.TriggerForTest() }, "triggering shutdown twice must not panic on a closed channel")
}

func TestReloadRequestedClearsAfterRead(t *testing.T) {
	h := NewHandler()
	assert.False(t, h.ReloadRequested())

	h.RequestReloadForTest()
	assert.True(t, h.ReloadRequested())
	assert.False(t, h.ReloadRequested(), "flag must clear after being read once")
}

func TestGlobalReturnsSameHandler(t *testing.T) {
	a := Global()
	b := Global()
	assert.Same(t, a, b)
}
