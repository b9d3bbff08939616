package worker

import (
	"context"
	"sync"
)

// Job is one unit of work run by a Pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produced
type Result interface {
	GetError() error
}

// Pool runs jobs on a bounded number of goroutines
type Pool struct {
	workers int
}

// NewPool creates a pool. Fewer than one worker means one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes every job and returns the results in job order. Every job is
// executed even after ctx ends so each slot holds a result; jobs observe ctx
// and fail fast.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	next := make(chan int)
	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				results[i] = jobs[i].Execute(ctx)
			}
		}()
	}

	for i := range jobs {
		next <- i
	}
	close(next)
	wg.Wait()

	return results
}
