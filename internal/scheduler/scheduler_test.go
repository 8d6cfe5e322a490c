package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunPendingIsFIFO(t *testing.T) {
	l := New()
	var order []int
	for i := range 5 {
		l.Schedule(func() error {
			order = append(order, i)
			return nil
		})
	}

	require.Equal(t, 5, l.Pending())
	require.NoError(t, l.RunPending())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Zero(t, l.Pending())
}

func TestLoop_TasksScheduledWhileDrainingRunAfterQueuedOnes(t *testing.T) {
	l := New()
	var order []string
	l.Schedule(func() error {
		order = append(order, "first")
		l.Schedule(func() error {
			order = append(order, "nested")
			return nil
		})
		return nil
	})
	l.Schedule(func() error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, l.RunPending())
	assert.Equal(t, []string{"first", "second", "nested"}, order)
}

func TestLoop_RunPendingJoinsErrors(t *testing.T) {
	l := New()
	errA := errors.New("a")
	errB := errors.New("b")
	l.Schedule(func() error { return errA })
	l.Schedule(func() error { return nil })
	l.Schedule(func() error { return errB })

	err := l.RunPending()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestLoop_RecoversPanics(t *testing.T) {
	l := New()
	sentinel := errors.New("boom")
	l.Schedule(func() error { panic(sentinel) })
	l.Schedule(func() error { panic("plain") })

	err := l.RunPending()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "task panicked: plain")
}

func TestLoop_RunProcessesTasksUntilCancelled(t *testing.T) {
	var (
		mu     sync.Mutex
		errs   []error
		ran    = make(chan int, 3)
		taskEr = errors.New("task failed")
	)
	l := New(WithErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.Schedule(func() error { ran <- 1; return nil })
	l.Schedule(func() error { ran <- 2; return taskEr })
	l.Schedule(func() error { ran <- 3; return nil })

	for want := 1; want <= 3; want++ {
		select {
		case got := <-ran:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], taskEr)
}

func TestLoop_ScheduleNilPanics(t *testing.T) {
	assert.Panics(t, func() { New().Schedule(nil) })
}
