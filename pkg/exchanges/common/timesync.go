package common

import (
	"sync"
	"time"
)

// TimeSync tracks the millisecond offset between local and exchange
// clocks so signed requests carry timestamps the venue accepts.
type TimeSync struct {
	mu       sync.RWMutex
	offset   int64 // server - local, ms
	lastSync time.Time
}

// Update recomputes the offset from a server timestamp sampled between
// localBefore and localAfter (half the round trip is assumed each way).
func (ts *TimeSync) Update(serverMillis, localBefore, localAfter int64) {
	local := localBefore + (localAfter-localBefore)/2

	ts.mu.Lock()
	ts.offset = serverMillis - local
	ts.lastSync = time.Now()
	ts.mu.Unlock()
}

// NowMillis returns the current time adjusted for the server offset.
func (ts *TimeSync) NowMillis() int64 {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return time.Now().UnixMilli() + ts.offset
}

// Offset returns the last computed offset in milliseconds.
func (ts *TimeSync) Offset() int64 {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.offset
}
