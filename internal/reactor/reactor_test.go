package reactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_DrainPostedRunsHandlers(t *testing.T) {
	l := New()
	var ran []string
	a := l.NewEvent(func() { ran = append(ran, "a") })
	b := l.NewEvent(func() { ran = append(ran, "b") })

	a.Post()
	b.Post()
	assert.Equal(t, 2, l.Len())

	n := l.DrainPosted()
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, 0, l.Len())
}

func TestEvent_PostCoalesces(t *testing.T) {
	l := New()
	count := 0
	e := l.NewEvent(func() { count++ })

	e.Post()
	e.Post()
	e.Post()

	assert.Equal(t, 1, l.DrainPosted())
	assert.Equal(t, 1, count)
}

func TestEvent_RepostableFromOwnHandler(t *testing.T) {
	l := New()
	count := 0
	var e *Event
	e = l.NewEvent(func() {
		count++
		if count < 3 {
			e.Post()
		}
	})

	e.Post()
	assert.Equal(t, 3, l.DrainPosted())
	assert.Equal(t, 3, count)
}

func TestLoop_PostAfterStopIsDropped(t *testing.T) {
	l := New()
	e := l.NewEvent(func() { t.Fatal("handler ran after stop") })

	l.Stop()
	e.Post()
	assert.Equal(t, 0, l.Len())

	// Stop is idempotent
	l.Stop()
}

func TestLoop_RunStopsOnStop(t *testing.T) {
	l := New()
	var e *Event
	e = l.NewEvent(func() { l.Stop() })
	e.Post()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_RunStopsOnContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_RunProcessesPostsFromOtherGoroutines(t *testing.T) {
	l := New()
	done := make(chan struct{})
	e := l.NewEvent(func() {
		close(done)
		l.Stop()
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		e.Post()
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted event never ran")
	}
	require.NoError(t, <-errCh)
}

func TestLoop_AfterPostsOnExpiry(t *testing.T) {
	l := New()
	fired := make(chan struct{})
	e := l.NewEvent(func() {
		close(fired)
		l.Stop()
	})

	l.After(5*time.Millisecond, e)

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	require.NoError(t, <-errCh)
}

func TestLoop_AfterStopCancelsWakeup(t *testing.T) {
	l := New()
	e := l.NewEvent(func() { t.Error("cancelled timer fired") })

	timer := l.After(50*time.Millisecond, e)
	timer.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, l.DrainPosted())
}
