/*
NAME
  pool.go

DESCRIPTION
  pool.go implements the renderer's concurrency model: a fixed-size
  worker pool (clamped to [1, 8]) draining a shared FIFO job queue, with
  two strict batches per frame (essence decode, then bed/object render)
  and a single coordinating producer that waits out each batch before
  the next. Workers suspend only on the job channel; shutdown closes a
  done channel and every worker observes it on its next wakeup.

  The goroutine + done-channel + sync.WaitGroup shutdown idiom (a select
  loop over a done channel, with Close closing done then waiting on the
  group) follows the same shape as a long-lived sender goroutine,
  generalised to a fixed pool draining a shared job channel in
  per-frame batches.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import "sync"

const (
	minPoolSize = 1
	maxPoolSize = 8
)

// job is a lightweight, pass-by-value unit of work.
type job func() error

// Pool is the renderer's fixed-size worker pool.
type Pool struct {
	jobs chan job
	done chan struct{}
	wg   sync.WaitGroup
}

// NewPool starts a pool of size workers, clamped to [1, 8].
func NewPool(size int) *Pool {
	if size < minPoolSize {
		size = minPoolSize
	}
	if size > maxPoolSize {
		size = maxPoolSize
	}
	p := &Pool{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// worker pulls jobs until told to terminate.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			j()
		}
	}
}

// RunBatch enqueues jobs and blocks until every one has completed,
// matching the renderer's rule that a producer waits on one batch to
// complete before enqueueing the next. The first non-nil error observed
// is returned once all jobs finish; remaining jobs still run to
// completion.
func (p *Pool) RunBatch(jobs []job) error {
	if len(jobs) == 0 {
		return nil
	}
	var batchWG sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	batchWG.Add(len(jobs))
	for _, j := range jobs {
		wrapped := func(j job) job {
			return func() error {
				defer batchWG.Done()
				if err := j(); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
				return nil
			}
		}(j)
		select {
		case p.jobs <- wrapped:
		case <-p.done:
			batchWG.Done()
		}
	}
	batchWG.Wait()
	return firstErr
}

// Close sets the terminate flag and waits for every worker to exit.
func (p *Pool) Close() {
	close(p.done)
	p.wg.Wait()
}
