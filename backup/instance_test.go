package backup

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownInstance(t *testing.T) {
	rec := newRecorder()
	b := New(nil, testSettings(), WithCommander(rec.command))

	require.NoError(t, b.ShutdownInstance(context.Background(), "Ubuntu"))
	assert.True(t, rec.calledWith("--terminate"))
	assert.True(t, rec.calledWith("Ubuntu"))
}

func TestShutdownInstanceFailure(t *testing.T) {
	rec := newRecorder("HELPER_TERMINATE_FAIL=1")
	b := New(nil, testSettings(), WithCommander(rec.command))

	err := b.ShutdownInstance(context.Background(), "Ubuntu")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShutdown), err.Error())
	assert.Contains(t, err.Error(), "exit code 1")
}

func TestShutdownInstanceInterrupted(t *testing.T) {
	rec := newRecorder("HELPER_TERMINATE_HANG=1")
	b := New(nil, testSettings(), WithCommander(rec.command))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	err := b.ShutdownInstance(ctx, "Ubuntu")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted), "%v", err)
	assert.False(t, errors.Is(err, ErrShutdown), "%v", err)
}

func TestWaitForShutdown(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	b := New(nil, testSettings(), WithClock(clk))

	done := make(chan error, 1)
	go func() { done <- b.WaitForShutdown(context.Background()) }()

	require.NoError(t, clk.WaitAdvance(DefaultShutdownDelay, time.Second, 1))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForShutdown did not return after the delay")
	}
}

func TestWaitForShutdownInterrupted(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	b := New(nil, testSettings(), WithClock(clk))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.WaitForShutdown(ctx)
	assert.True(t, errors.Is(err, ErrInterrupted), "%v", err)
}

func TestOpenExplorerIgnoresExitCode(t *testing.T) {
	rec := newRecorder()
	logger, logs := testLogger()
	b := New(logger, testSettings(), WithCommander(rec.command))

	b.OpenExplorer(context.Background(), `C:\Backups\Ubuntu`)
	assert.True(t, rec.calledWith(`C:\Backups\Ubuntu`))
	assert.Contains(t, logs.String(), "explorer returned an error")
}
