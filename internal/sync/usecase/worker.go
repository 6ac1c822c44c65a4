package usecase

import (
	"log"
	"sync"
)

// WorkerPool runs background jobs on a fixed set of goroutines with a bounded
// queue. Sync runs are queued here so a slow vendor cannot pile up goroutines.
type WorkerPool struct {
	jobs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 3
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	pool := &WorkerPool{
		jobs: make(chan func(), queueSize),
	}
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
	log.Printf("[Worker] Worker %d stopped", id)
}

// Submit queues a job. Returns false when the queue is full; the caller
// decides whether to drop or retry on the next tick.
func (p *WorkerPool) Submit(job func()) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
