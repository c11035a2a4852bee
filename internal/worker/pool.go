// worker/pool.go
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Worker is one long-lived goroutine consuming the pool's queue.
type Worker struct {
	ID int
}

// Pool runs jobs on a fixed number of workers fed by one shared Queue.
type Pool struct {
	workers []*Worker
	queue   *Queue
	logger  *slog.Logger

	wg      sync.WaitGroup
	once    sync.Once
	drained chan struct{}
}

// New starts size workers listening on a fresh queue.
// A size below one is a programming error and panics.
func New(size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		panic(fmt.Sprintf("worker: pool size must be positive, got %d", size))
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		workers: make([]*Worker, 0, size),
		queue:   NewQueue(),
		logger:  logger,
		drained: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		w := &Worker{ID: i}
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w)
	}

	return p
}

func (p *Pool) run(w *Worker) {
	defer p.wg.Done()

	for {
		job, ok := p.queue.Receive()
		if !ok {
			p.logger.Debug("worker disconnected; shutting down", "worker_id", w.ID)
			return
		}
		p.logger.Debug("worker got a job; executing", "worker_id", w.ID)
		p.exec(w, job)
	}
}

// exec runs one job. A panicking job must not take its worker with it.
func (p *Pool) exec(w *Worker, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked",
				"worker_id", w.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	job()
}

// Execute enqueues job and returns immediately.
// It panics if job is nil or the pool has been shut down.
func (p *Pool) Execute(job Job) {
	if job == nil {
		panic("worker: nil job")
	}
	p.queue.Send(job)
}

// Size is the fixed number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Pending is the number of queued jobs no worker has claimed yet.
func (p *Pool) Pending() int {
	return p.queue.Len()
}

// Shutdown closes the queue and waits for every worker to drain it and exit.
// Jobs enqueued before Shutdown all run to completion.
func (p *Pool) Shutdown() {
	p.close()
	<-p.drained
}

// ShutdownContext is Shutdown bounded by ctx. If ctx ends first it returns
// ctx.Err(); the workers keep draining in the background.
func (p *Pool) ShutdownContext(ctx context.Context) error {
	p.close()
	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) close() {
	p.once.Do(func() {
		p.logger.Debug("shutting down all workers", "workers", len(p.workers))
		p.queue.Close()
		go func() {
			p.wg.Wait()
			close(p.drained)
		}()
	})
}
