package pool

import (
	"context"
	"sync"

	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/utils"
)

// Job is a unit of work executed by the pool. The context is the
// pool's base context; jobs needing a deadline derive their own.
type Job func(ctx context.Context)

// Handle lets a submitter wait for one job to reach a terminal state.
type Handle struct {
	name string
	done chan struct{}
}

// Done returns a channel closed when the job has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job finishes or the context is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type pending struct {
	job    Job
	handle *Handle
}

// WorkerPool runs jobs on a bounded set of workers. Submit never
// blocks; jobs beyond capacity queue FIFO. The bound exists because
// each job fans out to external services that would be overwhelmed by
// unbounded concurrency.
type WorkerPool struct {
	log     *logger.Logger
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []pending
	running int
	closed  bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a pool with the given number of workers and starts them.
func New(workers int, log *logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		log:     log,
		workers: workers,
		baseCtx: ctx,
		cancel:  cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		utils.GoSafe(func() {
			defer p.wg.Done()
			p.worker()
		})
	}
	return p
}

// Submit enqueues a job and returns immediately. After Shutdown the
// job is dropped with its handle closed so waiters do not hang.
func (p *WorkerPool) Submit(name string, job Job) *Handle {
	h := &Handle{name: name, done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(h.done)
		p.log.Warn("job submitted after pool shutdown", logger.StringField("job", name))
		return h
	}
	p.queue = append(p.queue, pending{job: job, handle: h})
	p.mu.Unlock()
	p.cond.Signal()

	return h
}

func (p *WorkerPool) worker() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed && len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.running++
		p.mu.Unlock()

		p.runOne(next)

		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}
}

func (p *WorkerPool) runOne(item pending) {
	defer close(item.handle.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("job panicked", logger.StringField("job", item.handle.name), logger.Field("panic", r))
		}
	}()
	item.job(p.baseCtx)
}

// Pending returns the number of queued (not yet running) jobs.
func (p *WorkerPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Workers returns the concurrency bound.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Shutdown stops accepting jobs, lets queued work drain, and waits for
// workers to exit or the context to expire.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}
