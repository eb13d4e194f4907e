package common

import (
	"strconv"
	"sync"
	"time"
)

// WeightTracker follows the request-weight budget the exchange reports
// back in response headers, so callers can tell how close they are to a ban.
type WeightTracker struct {
	mu        sync.Mutex
	used      int
	limit     int
	windowEnd time.Time
	window    time.Duration
}

// NewWeightTracker creates a tracker for a weight budget per window
// (Binance futures: 2400 weight per minute).
func NewWeightTracker(limit int, window time.Duration) *WeightTracker {
	return &WeightTracker{
		limit:     limit,
		window:    window,
		windowEnd: time.Now().Add(window),
	}
}

// Observe records the used weight reported by a response header.
// Empty or malformed values are ignored.
func (w *WeightTracker) Observe(headerValue string) {
	if headerValue == "" {
		return
	}
	used, err := strconv.Atoi(headerValue)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Now().After(w.windowEnd) {
		w.windowEnd = time.Now().Add(w.window)
	}
	w.used = used
}

// Usage returns the fraction of the budget consumed in the current window.
func (w *WeightTracker) Usage() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.limit == 0 || time.Now().After(w.windowEnd) {
		return 0
	}
	return float64(w.used) / float64(w.limit)
}
