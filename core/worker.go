package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool is closed")

// analysisJob is one queued analysis.
type analysisJob struct {
	fileID string
	force  bool
}

// JobFunc analyzes one file.
type JobFunc func(ctx context.Context, fileID string, force bool)

// PanicFunc is called with the recovered value when a job panics.
type PanicFunc func(ctx context.Context, fileID string, recovered any)

// WorkerPool drains a bounded queue of analysis jobs with a fixed number of
// goroutines. Jobs for different files run in no particular order.
type WorkerPool struct {
	jobs    chan analysisJob
	wg      *conc.WaitGroup
	run     JobFunc
	onPanic PanicFunc
	log     logrus.FieldLogger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize jobs.
// The pool stops when ctx is cancelled or Close is called.
func NewWorkerPool(ctx context.Context, workers, queueSize int, run JobFunc, onPanic PanicFunc, log logrus.FieldLogger) *WorkerPool {
	workers = max(workers, 1)
	queueSize = max(queueSize, 1)
	p := &WorkerPool{
		jobs:    make(chan analysisJob, queueSize),
		wg:      conc.NewWaitGroup(),
		run:     run,
		onPanic: onPanic,
		log:     log,
	}
	for range workers {
		p.wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					p.execute(ctx, job)
				}
			}
		})
	}
	return p
}

func (p *WorkerPool) execute(ctx context.Context, job analysisJob) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("file_id", job.fileID).Errorf("Analysis panicked: %v", r)
			if p.onPanic != nil {
				p.onPanic(ctx, job.fileID, r)
			}
		}
	}()
	p.run(ctx, job.fileID, job.force)
}

// Submit enqueues an analysis without blocking. It returns ErrQueueFull when
// the queue is at capacity.
func (p *WorkerPool) Submit(fileID string, force bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- analysisJob{fileID: fileID, force: force}:
		return nil
	default:
		return fmt.Errorf("%w: %d jobs pending", contract.ErrQueueFull, cap(p.jobs))
	}
}

// Pending returns the number of queued jobs.
func (p *WorkerPool) Pending() int {
	return len(p.jobs)
}

// Close stops accepting jobs, drains the queue and waits for the workers.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}
