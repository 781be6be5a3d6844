package services

import (
	"sync"
	"testing"
	"time"
)

func TestIgnoreRegistry_ScheduleFires(t *testing.T) {
	var mu sync.Mutex
	fired := []string{}
	r := NewIgnoreRegistry(20*time.Millisecond, func(key string) {
		mu.Lock()
		fired = append(fired, key)
		mu.Unlock()
	})
	defer r.Stop()

	r.Schedule("t1")
	if got := r.Pending(); got != 1 {
		t.Fatalf("Pending = %d, want 1", got)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != "t1" {
		t.Fatalf("fired = %v, want [t1]", fired)
	}
	if got := r.Pending(); got != 0 {
		t.Fatalf("Pending after fire = %d, want 0", got)
	}
}

func TestIgnoreRegistry_CancelStopsTimer(t *testing.T) {
	var mu sync.Mutex
	fired := 0
	r := NewIgnoreRegistry(20*time.Millisecond, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	defer r.Stop()

	r.Schedule("t1")
	if !r.Cancel("t1") {
		t.Fatal("Cancel returned false for a pending timer")
	}
	if r.Cancel("t1") {
		t.Fatal("Cancel returned true for an already-cancelled timer")
	}

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Fatalf("callback fired %d times after cancel, want 0", fired)
	}
}

func TestIgnoreRegistry_RescheduleRearms(t *testing.T) {
	var mu sync.Mutex
	fired := 0
	r := NewIgnoreRegistry(40*time.Millisecond, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	defer r.Stop()

	r.Schedule("t1")
	time.Sleep(25 * time.Millisecond)
	r.Schedule("t1") // re-arm before the first timer fires

	time.Sleep(25 * time.Millisecond)
	mu.Lock()
	if fired != 0 {
		mu.Unlock()
		t.Fatal("timer fired before re-armed delay elapsed")
	}
	mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Fatalf("fired = %d after re-arm, want exactly 1", fired)
	}
}

func TestIgnoreRegistry_StopCancelsAll(t *testing.T) {
	r := NewIgnoreRegistry(time.Hour, nil)
	r.Schedule("a")
	r.Schedule("b")
	r.Stop()
	if got := r.Pending(); got != 0 {
		t.Fatalf("Pending after Stop = %d, want 0", got)
	}
}

func TestIgnoreRegistry_DefaultDelay(t *testing.T) {
	r := NewIgnoreRegistry(0, nil)
	defer r.Stop()
	if r.delay != 10*time.Second {
		t.Fatalf("default delay = %v, want 10s", r.delay)
	}
}
