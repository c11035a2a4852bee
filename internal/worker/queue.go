// worker/queue.go
package worker

import (
	"errors"
	"sync"
)

// ErrQueueClosed is the panic value of a Send on a closed Queue.
var ErrQueueClosed = errors.New("worker: send on closed queue")

// Job is one deferred unit of work. It is executed exactly once.
type Job func()

// Queue is an unbounded FIFO of jobs shared by any number of senders and
// receivers. Send never blocks.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []Job
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends a job and wakes one waiting receiver.
// It panics with ErrQueueClosed once the queue is closed.
func (q *Queue) Send(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		panic(ErrQueueClosed)
	}
	q.jobs = append(q.jobs, job)
	q.cond.Signal()
}

// Receive blocks until a job is available. ok is false once the queue
// is closed and every pending job has been handed out.
func (q *Queue) Receive() (job Job, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return nil, false
	}

	job = q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return job, true
}

// Close stops the queue from accepting jobs. Pending jobs stay receivable.
// Closing twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of jobs waiting for a worker.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
