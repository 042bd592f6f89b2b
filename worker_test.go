package loom

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsEnqueuedJob(t *testing.T) {
	p := NewWorkerPool(5*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	var ran atomic.Bool
	p.Enqueue(func(tok CancelToken) { ran.Store(true) }, time.Time{})

	deadline := time.Now().Add(time.Second)
	for !ran.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("job never ran")
	}
}

func TestWorkerPoolStopCancelsPending(t *testing.T) {
	p := NewWorkerPool(time.Hour, nil) // tick far in the future, job never drains naturally
	p.Start()

	tok := p.Enqueue(func(tok CancelToken) {}, time.Time{})
	p.Stop()

	if !tok.Cancelled() {
		t.Error("pending job's token should be cancelled on Stop")
	}
}

func TestWorkerPoolDeadlineExpiry(t *testing.T) {
	tok := newCancelToken(time.Now().Add(-time.Second)) // already expired
	if !tok.Cancelled() {
		t.Error("token past its deadline should report Cancelled")
	}
}

func TestWorkerPoolPanicRecovered(t *testing.T) {
	p := NewWorkerPool(5*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	var ranAfter atomic.Bool
	p.Enqueue(func(tok CancelToken) { panic("boom") }, time.Time{})
	p.Enqueue(func(tok CancelToken) { ranAfter.Store(true) }, time.Time{})

	deadline := time.Now().Add(time.Second)
	for !ranAfter.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ranAfter.Load() {
		t.Fatal("a panicking job should not prevent later jobs in the same tick from running")
	}
}

func TestWorkerPoolStartTwiceIsNoop(t *testing.T) {
	p := NewWorkerPool(5*time.Millisecond, nil)
	p.Start()
	p.Start()
	p.Stop()
}

func TestWorkerPoolPending(t *testing.T) {
	p := NewWorkerPool(time.Hour, nil)
	p.Enqueue(func(tok CancelToken) {}, time.Time{})
	p.Enqueue(func(tok CancelToken) {}, time.Time{})
	if p.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", p.Pending())
	}
}
