package storage

import (
	"sync/atomic"
	"time"
)

var lastCreationNanos int64

// nextCreationTime returns a strictly increasing creation timestamp. Two
// tasks inserted within the same nanosecond still get distinct createdAt
// values, which keeps the per-user fetch order stable.
func nextCreationTime() time.Time {
	for {
		now := time.Now().UTC().UnixNano()
		last := atomic.LoadInt64(&lastCreationNanos)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastCreationNanos, last, now) {
			return time.Unix(0, now).UTC()
		}
	}
}
