// Package services – IgnoreRegistry
//
// A suggestion the user neither accepts nor dismisses is considered ignored
// after a fixed delay. This file implements the keyed registry of those
// deferred actions: scheduling a timer for a template id cancels any prior
// timer for the same id, and any direct interaction (accept, dismiss)
// cancels the timer before it fires. The registry is explicit state owned
// by its constructor's caller rather than ambient package state, which
// keeps tests isolated.
package services

import (
	"sync"
	"time"
)

// IgnoreRegistry tracks one cancellable deferred action per key (template
// id). Safe for concurrent use.
type IgnoreRegistry struct {
	delay  time.Duration
	onFire func(key string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewIgnoreRegistry constructs a registry whose timers fire onFire(key)
// after delay. Delays <= 0 are coerced to 10 seconds. The callback runs on
// the timer goroutine and must not block.
func NewIgnoreRegistry(delay time.Duration, onFire func(key string)) *IgnoreRegistry {
	if delay <= 0 {
		delay = 10 * time.Second
	}
	return &IgnoreRegistry{
		delay:  delay,
		onFire: onFire,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms (or re-arms) the timer for key. A prior timer for the same
// key is cancelled first, so only the latest showing of a suggestion can
// register an ignore.
func (r *IgnoreRegistry) Schedule(key string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.timers[key]; ok {
		prev.Stop()
	}
	r.timers[key] = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()
		if r.onFire != nil {
			r.onFire(key)
		}
	})
}

// Cancel stops the pending timer for key, reporting whether one existed.
func (r *IgnoreRegistry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.timers, key)
	return true
}

// Stop cancels every pending timer. Used on shutdown.
func (r *IgnoreRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.timers {
		t.Stop()
		delete(r.timers, k)
	}
}

// Pending reports the number of armed timers.
func (r *IgnoreRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
