// Package parallel provides the execution contexts Col2Im tasks submit their workers to.
package parallel

import (
	"runtime"
	"sync"
)

// Executor runs submitted tasks, possibly concurrently.
//
// Execute may block until the executor has capacity, but must not wait for the
// task itself to finish unless the executor is sequential.
type Executor interface {
	Execute(task func())

	// Parallelism is the number of tasks that may usefully run at the same time.
	Parallelism() int
}

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Number of worker goroutines to use.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
	}
}

// NewExecutor returns the executor described by cfg: a Pool when parallelism is
// enabled, Inline otherwise.
func NewExecutor(cfg Config) Executor {
	if !cfg.Enabled || cfg.NumWorkers <= 1 {
		return Inline{}
	}
	return NewPool(cfg.NumWorkers)
}

// Inline runs every task synchronously on the caller's goroutine.
type Inline struct{}

// Execute runs task and returns when it is done.
func (Inline) Execute(task func()) {
	task()
}

// Parallelism is always 1.
func (Inline) Parallelism() int {
	return 1
}

// Pool runs tasks in goroutines, keeping at most maxParallelism of them running.
type Pool struct {
	// maxParallelism is the limit of concurrently running tasks.
	// 0 runs tasks inline, negative values mean unlimited.
	maxParallelism int
	mu             sync.Mutex
	cond           sync.Cond // Should be signaled whenever numRunning is decreased.
	numRunning     int
}

// NewPool returns a Pool running at most maxParallelism tasks at once.
// If maxParallelism is 0 tasks run inline, if negative there is no limit.
func NewPool(maxParallelism int) *Pool {
	p := &Pool{maxParallelism: maxParallelism}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

// Parallelism returns the pool's limit, or runtime.NumCPU() if unlimited, or 1 if inline.
func (p *Pool) Parallelism() int {
	switch {
	case p.maxParallelism == 0:
		return 1
	case p.maxParallelism < 0:
		return runtime.NumCPU()
	}
	return p.maxParallelism
}

// Running returns the number of tasks currently running in the pool's goroutines.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numRunning
}

// Execute waits until there is a worker available and starts task in a goroutine.
//
// If parallelism is disabled (maxParallelism is 0), it runs the task inline and returns when it is finished.
func (p *Pool) Execute(task func()) {
	if p.maxParallelism < 0 {
		go task()
		return
	} else if p.maxParallelism == 0 {
		task()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.numRunning >= p.maxParallelism {
		p.cond.Wait()
	}
	p.lockedRunTaskInGoroutine(task)
}

// lockedRunTaskInGoroutine and keep tabs on p.numRunning.
//
// It must be called with p.mu acquired.
func (p *Pool) lockedRunTaskInGoroutine(task func()) {
	p.numRunning++
	go func() {
		defer func() {
			p.mu.Lock()
			p.numRunning--
			p.cond.Signal()
			p.mu.Unlock()
		}()
		task()
	}()
}
