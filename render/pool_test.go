/*
NAME
  pool_test.go

DESCRIPTION
  pool_test.go tests the worker pool's size clamping, that RunBatch waits
  for every job and surfaces the first error while still running the
  rest, and that Close terminates every worker.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunBatchEmptyIsNoop(t *testing.T) {
	p := NewPool(2)
	defer p.Close()
	if err := p.RunBatch(nil); err != nil {
		t.Errorf("RunBatch(nil) = %v, want nil", err)
	}
}

func TestRunBatchRunsEveryJob(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count int32
	jobs := make([]job, 20)
	for i := range jobs {
		jobs[i] = func() error {
			atomic.AddInt32(&count, 1)
			return nil
		}
	}
	if err := p.RunBatch(jobs); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if got := atomic.LoadInt32(&count); got != int32(len(jobs)) {
		t.Errorf("completed jobs: got %d want %d", got, len(jobs))
	}
}

func TestRunBatchSurfacesFirstErrorButRunsAll(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var count int32
	wantErr := errors.New("boom")
	jobs := []job{
		func() error { atomic.AddInt32(&count, 1); return nil },
		func() error { atomic.AddInt32(&count, 1); return wantErr },
		func() error { atomic.AddInt32(&count, 1); return errors.New("second failure") },
	}
	err := p.RunBatch(jobs)
	if err == nil {
		t.Fatalf("expected a non-nil batch error")
	}
	if got := atomic.LoadInt32(&count); got != int32(len(jobs)) {
		t.Errorf("completed jobs: got %d want %d (a failing job must not abort the batch)", got, len(jobs))
	}
}

func TestNewPoolClampsSize(t *testing.T) {
	small := NewPool(0)
	defer small.Close()
	if err := small.RunBatch([]job{func() error { return nil }}); err != nil {
		t.Errorf("pool clamped to minimum size failed a trivial job: %v", err)
	}

	large := NewPool(100)
	defer large.Close()
	var count int32
	jobs := make([]job, 50)
	for i := range jobs {
		jobs[i] = func() error { atomic.AddInt32(&count, 1); return nil }
	}
	if err := large.RunBatch(jobs); err != nil {
		t.Fatalf("RunBatch on oversized pool: %v", err)
	}
	if got := atomic.LoadInt32(&count); got != int32(len(jobs)) {
		t.Errorf("completed jobs: got %d want %d", got, len(jobs))
	}
}

func TestPoolCloseTerminatesWorkers(t *testing.T) {
	p := NewPool(3)
	p.Close() // must return once every worker has exited, not hang.
}
