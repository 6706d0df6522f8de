package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// WorkerPool processes evidence items concurrently as independent
// pipeline runs. Concurrency is at the granularity of whole runs; a
// single record is only ever mutated by the one worker executing its run.
type WorkerPool struct {
	controller *Controller
	logger     Logger

	jobs    chan RunInput
	results chan RunResult
	wg      sync.WaitGroup
	ctx     context.Context

	mu      sync.Mutex
	stopped bool
}

func NewWorkerPool(ctx context.Context, controller *Controller, logger Logger) *WorkerPool {
	return &WorkerPool{
		controller: controller,
		logger:     logger,
		ctx:        ctx,
	}
}

// Start begins the pool with the specified number of workers. A
// non-positive count defaults to the number of CPUs.
func (wp *WorkerPool) Start(workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	wp.jobs = make(chan RunInput, workers)
	wp.results = make(chan RunResult, workers)
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit queues an evidence item for processing.
func (wp *WorkerPool) Submit(input RunInput) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.stopped {
		return errors.New("worker pool stopped")
	}
	select {
	case wp.jobs <- input:
		return nil
	case <-wp.ctx.Done():
		return errors.Wrap(wp.ctx.Err(), "worker pool context done")
	}
}

// Results exposes run outcomes in completion order.
func (wp *WorkerPool) Results() <-chan RunResult {
	return wp.results
}

// Stop drains queued work and waits for in-flight runs to finish.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.jobs)
	wp.mu.Unlock()

	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for input := range wp.jobs {
		if wp.ctx.Err() != nil {
			wp.logger.Infof("Skipping evidence %s: worker pool context done", input.EvidenceID)
			continue
		}
		result := wp.controller.Run(wp.ctx, input)
		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			wp.logger.Errorf("Dropping result for evidence %s: worker pool context done", input.EvidenceID)
		}
	}
}
