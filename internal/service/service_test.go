package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"mdnotes/internal/service"
)

// ─────────────────────────────────────────────────────────────
// jobGuard tests
// ─────────────────────────────────────────────────────────────

func TestJobGuard_TryLock(t *testing.T) {
	var g service.ExportedJobGuard

	if !g.TryLock("job-1") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("job-1") {
		t.Fatal("expected second TryLock for same job to fail")
	}
	if !g.TryLock("job-2") {
		t.Fatal("expected TryLock for different job to succeed")
	}
	if !g.Running("job-1") {
		t.Fatal("expected job-1 to be running")
	}
	g.Unlock("job-1")
	g.Unlock("job-2")
	g.Unlock("job-2") // unlocking an idle job is a no-op

	if g.Running("job-1") {
		t.Fatal("expected job-1 to be idle after unlock")
	}
	if !g.TryLock("job-1") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("job-1")
}

func TestJobGuard_WaitAll(t *testing.T) {
	var g service.ExportedJobGuard

	if !g.TryLock("job-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("job-a")
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)

	if m.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", m.Len())
	}
	if got := m.Named("test:event"); len(got) != 1 {
		t.Fatalf("expected 1 test:event, got %d", len(got))
	}
}

func TestMockEmitter_ConcurrentEmit(t *testing.T) {
	m := &service.MockEmitter{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Emit(context.Background(), "e", nil)
		}()
	}
	wg.Wait()
	if m.Len() != 50 {
		t.Fatalf("expected 50 events, got %d", m.Len())
	}
}
