package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGo_RunsTask(t *testing.T) {
	r := New(4, time.Second)
	defer r.Close()

	var ran atomic.Bool
	r.Go("test", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	r.Wait()
	assert.True(t, ran.Load())
}

func TestGo_ErrorDoesNotPropagate(t *testing.T) {
	r := New(4, time.Second)
	defer r.Close()

	r.Go("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	r.Wait() // must not panic or block
}

func TestGo_PanicRecovered(t *testing.T) {
	r := New(4, time.Second)
	defer r.Close()

	r.Go("panicking", func(ctx context.Context) error {
		panic("boom")
	})
	r.Wait()
}

func TestGo_ContextDetachedFromCaller(t *testing.T) {
	r := New(4, time.Second)
	defer r.Close()

	got := make(chan error, 1)
	r.Go("detached", func(ctx context.Context) error {
		got <- ctx.Err()
		return nil
	})
	r.Wait()
	assert.NoError(t, <-got)
}

func TestReport_DropsWhenFull(t *testing.T) {
	r := &Runner{timeout: time.Second, errs: make(chan taskError, 1), done: make(chan struct{})}
	// No drain goroutine: fill the channel and overflow it.
	r.report("a", errors.New("1"))
	r.report("b", errors.New("2")) // must not block
	assert.Len(t, r.errs, 1)
}
