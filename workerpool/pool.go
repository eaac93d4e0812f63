// Package workerpool provides the process-wide bounded thread pool that
// every histogram job in this module dispatches onto: a fixed
// number of long-lived goroutines draining a shared job queue, with a
// per-call Group for joining a batch of jobs before the single-threaded
// accumulation phase that follows.
//
// The pool never exposes a callback-driven API — callers always block on
// Group.Wait (or a Future's Get) — matching the "no
// callback-driven APIs" constraint.
package workerpool

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size goroutine pool. The zero value is not usable; build
// one with New.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

// defaultPool is the process-wide singleton most callers should use.
// Lazily constructed once with GOMAXPROCS workers; SetGlobalWorkers
// replaces it.
var (
	defaultMu   sync.Mutex
	defaultPool *Pool
)

// New starts a Pool with the given number of workers. workers <= 0 is
// normalized to runtime.GOMAXPROCS(0).
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{jobs: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Global returns the process-wide default pool, creating it on first use
// sized to GOMAXPROCS.
func Global() *Pool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultPool == nil {
		defaultPool = New(runtime.GOMAXPROCS(0))
	}
	return defaultPool
}

// SetGlobalWorkers recreates the process-wide pool with the requested
// worker count; intended to be called once at startup from
// config.Config.General.Threads.
func SetGlobalWorkers(n int) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	old := defaultPool
	defaultPool = New(n)
	if old != nil {
		old.Close()
	}
}

// Future is a handle to a single submitted job's result.
type Future[T any] struct {
	ch chan T
}

// Get blocks until the job completes and returns its result.
func (f Future[T]) Get() T { return <-f.ch }

// Submit schedules fn and returns a Future for its result.
func Submit[T any](p *Pool, fn func() T) Future[T] {
	ch := make(chan T, 1)
	p.jobs <- func() {
		ch <- fn()
	}
	return Future[T]{ch: ch}
}

// Group collects a batch of in-flight jobs dispatched from one calculate()
// call so the caller can join on all of them before the sequential
// accumulation phase.
type Group[T any] struct {
	futures []Future[T]
}

// Go submits fn onto p and tracks its Future in the group.
func (g *Group[T]) Go(p *Pool, fn func() T) {
	g.futures = append(g.futures, Submit(p, fn))
}

// Wait blocks until every tracked job has completed and returns the
// results in submission order.
func (g *Group[T]) Wait() []T {
	out := make([]T, len(g.futures))
	for i, f := range g.futures {
		out[i] = f.Get()
	}
	return out
}

// Close shuts the pool down; pending jobs still run, no new jobs may be
// submitted afterward. Only used by tests and program exit, since the
// module otherwise treats the pool as living for the process lifetime.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
