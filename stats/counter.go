package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// RpsCounter counts elements and calculates the rate since the last tick.
type RpsCounter struct {
	counter int64
	lastAdd int64
	mu      sync.Mutex
	start   time.Time
	last    time.Time
	lastRps float64
}

func (r *RpsCounter) Add(n int) {
	atomic.AddInt64(&r.counter, int64(n))
	atomic.AddInt64(&r.lastAdd, int64(n))
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

// Rps returns the rate calculated by the last Tick.
func (r *RpsCounter) Rps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRps
}

// AvgRps returns the rate since the first Tick.
func (r *RpsCounter) AvgRps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.start.IsZero() || !r.last.After(r.start) {
		return 0
	}
	return float64(r.Value()) / r.last.Sub(r.start).Seconds()
}

// Tick updates the rate with all elements added since the previous Tick.
func (r *RpsCounter) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := atomic.SwapInt64(&r.lastAdd, 0)
	if r.start.IsZero() {
		r.start = now
		r.last = now
		return
	}
	if dur := now.Sub(r.last).Seconds(); dur > 0 {
		r.lastRps = float64(added) / dur
	}
	r.last = now
}
