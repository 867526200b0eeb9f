package service

import (
	"context"
	"sync"
)

// ExportedJobGuard lets _test packages exercise the guard directly.
type ExportedJobGuard = jobGuard

// jobGuard lets one run of each named job through at a time and lets
// shutdown wait for the runs in flight.
type jobGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks job as running. It fails when a run is already in flight.
func (g *jobGuard) TryLock(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[job]; ok {
		return false
	}
	g.running[job] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends a run started by a successful TryLock.
func (g *jobGuard) Unlock(job string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[job]; !ok {
		return
	}
	delete(g.running, job)
	g.wg.Done()
}

// Running reports whether job is in flight.
func (g *jobGuard) Running(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[job]
	return ok
}

// WaitAll blocks until every run in flight ends or ctx is done.
func (g *jobGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
