package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// WorkerPool runs backtest evaluations in parallel. Workers share nothing
// mutable: every job carries its own configuration clone and a read-only
// view of the historical data, so no locks are needed around evaluation.
type WorkerPool struct {
	workerCount int
	jobQueue    chan EvaluationJob
	resultQueue chan EvaluationResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// EvaluationJob is one candidate configuration to backtest.
type EvaluationJob struct {
	ID     int
	Config *config.Config
	Data   []types.OHLCV
}

// EvaluationResult is the outcome of one job. Err is set when the worker
// failed; the optimizer drops such configurations from the batch.
type EvaluationResult struct {
	ID       int
	Config   *config.Config
	Results  *Results
	Duration time.Duration
	Err      error
}

// NewWorkerPool creates a pool with the given worker count; zero or negative
// defaults to the number of CPUs.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan EvaluationJob, jobBufferSize),
		resultQueue: make(chan EvaluationResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop drains the pool gracefully.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job for evaluation.
func (wp *WorkerPool) Submit(job EvaluationJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Results returns the channel completed evaluations arrive on.
func (wp *WorkerPool) Results() <-chan EvaluationResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob evaluates one configuration. A panic inside the evaluation is
// caught and surfaced as the result's Err, isolating the failure from
// sibling workers.
func processJob(job EvaluationJob) (result EvaluationResult) {
	startTime := time.Now()
	result = EvaluationResult{
		ID:     job.ID,
		Config: job.Config,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("worker panic: %v", r)
		}
		result.Duration = time.Since(startTime)
	}()

	engine, err := NewEngine(job.Config)
	if err != nil {
		result.Err = err
		return result
	}

	result.Results = engine.Run(job.Data)
	return result
}
