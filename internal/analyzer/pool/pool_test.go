package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	p := New(2, testLogger(t))
	defer p.Shutdown(context.Background())

	var ran atomic.Int32
	var handles []*Handle
	for i := 0; i < 10; i++ {
		handles = append(handles, p.Submit("job", func(ctx context.Context) {
			ran.Add(1)
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, h := range handles {
		require.NoError(t, h.Wait(ctx))
	}
	assert.Equal(t, int32(10), ran.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	p := New(workers, testLogger(t))
	defer p.Shutdown(context.Background())

	var current, peak atomic.Int32
	var mu sync.Mutex
	release := make(chan struct{})

	var handles []*Handle
	for i := 0; i < 12; i++ {
		handles = append(handles, p.Submit("job", func(ctx context.Context) {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			<-release
			current.Add(-1)
		}))
	}

	time.Sleep(50 * time.Millisecond)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, h := range handles {
		require.NoError(t, h.Wait(ctx))
	}
	assert.LessOrEqual(t, peak.Load(), int32(workers))
}

func TestSubmitNeverBlocksWhenSaturated(t *testing.T) {
	p := New(1, testLogger(t))
	defer p.Shutdown(context.Background())

	block := make(chan struct{})
	p.Submit("blocker", func(ctx context.Context) {
		<-block
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			p.Submit("queued", func(ctx context.Context) {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked with a saturated pool")
	}
	assert.GreaterOrEqual(t, p.Pending(), 1)
	close(block)
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := New(1, testLogger(t))
	defer p.Shutdown(context.Background())

	h := p.Submit("panicker", func(ctx context.Context) {
		panic("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Wait(ctx), "handle must resolve even when the job panics")

	// The worker must survive and keep serving jobs.
	var ran atomic.Bool
	h = p.Submit("after", func(ctx context.Context) {
		ran.Store(true)
	})
	require.NoError(t, h.Wait(ctx))
	assert.True(t, ran.Load())
}

func TestShutdownDrainsQueue(t *testing.T) {
	p := New(1, testLogger(t))

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		p.Submit("job", func(ctx context.Context) {
			ran.Add(1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
	assert.Equal(t, int32(5), ran.Load())
}

func TestSubmitAfterShutdownResolvesImmediately(t *testing.T) {
	p := New(1, testLogger(t))
	require.NoError(t, p.Shutdown(context.Background()))

	h := p.Submit("late", func(ctx context.Context) {
		t.Error("job must not run after shutdown")
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handle for a dropped job must already be closed")
	}
}
