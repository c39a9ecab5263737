//go:build !windows

package process

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSignalerRejectsInvalidPID(t *testing.T) {
	t.Parallel()

	signaler := NewSignaler()
	require.ErrorIs(t, signaler.Terminate(0), unix.ESRCH)
	require.ErrorIs(t, signaler.Kill(-1), unix.ESRCH)
}

func TestSignalerTerminatesAndTreatsGoneProcessAsDone(t *testing.T) {
	t.Parallel()

	supervisor := NewSupervisor(os.Args[0])
	proc, err := supervisor.Spawn(context.Background(), helperConfig("sleep", "task"))
	require.NoError(t, err)
	p := proc.(*process)

	signaler := NewSignaler()
	require.NoError(t, signaler.Terminate(p.PID()))
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("process ignored SIGTERM")
	}
	assert.False(t, signaler.Alive(p.PID()))

	// The pid has been reaped, so there is nothing left to signal.
	require.NoError(t, signaler.Kill(p.PID()))
}
