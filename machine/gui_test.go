package machine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTicks(exit <-chan bool, done <-chan struct{}) (*atomic.Int32, <-chan struct{}) {
	var (
		sent    atomic.Int32
		stopped = make(chan struct{})
	)
	go func() {
		defer close(stopped)
		ticks(time.Millisecond, func() { sent.Add(1) }, exit, done)
	}()
	return &sent, stopped
}

func waitStopped(t *testing.T, stopped <-chan struct{}) {
	t.Helper()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker did not stop")
	}
}

func TestTicksDone(t *testing.T) {
	done := make(chan struct{})
	sent, stopped := runTicks(nil, done)
	require.Eventually(t, func() bool { return sent.Load() >= 2 },
		5*time.Second, time.Millisecond)

	close(done)
	waitStopped(t, stopped)
	n := sent.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, sent.Load())
}

func TestTicksExit(t *testing.T) {
	exit := make(chan bool)
	close(exit)
	sent, stopped := runTicks(exit, nil)
	waitStopped(t, stopped)
	assert.GreaterOrEqual(t, sent.Load(), int32(1))
}
