package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// senderLimiter applies a per-sender token bucket to inbound events so one
// chat cannot flood the workflow. Buckets are created on demand and idle
// entries are evicted opportunistically during lookups.
type senderLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[int64]*senderBucket
	ttl      time.Duration
	lookups  uint64
}

type senderBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newSenderLimiter constructs a limiter with the given tokens-per-second and
// burst. A non-positive burst is coerced to 1.
func newSenderLimiter(rps float64, burst int) *senderLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &senderLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[int64]*senderBucket),
		ttl:      10 * time.Minute,
	}
}

// allow reports whether senderID may proceed, consuming one token if so.
func (l *senderLimiter) allow(senderID int64) bool {
	now := time.Now()

	l.mu.Lock()
	// Opportunistic cleanup after a threshold of lookups. Runs before the
	// requested bucket is touched so a stale entry can be evicted even when
	// it is the one being fetched.
	l.lookups++
	if l.lookups >= 5000 {
		for id, b := range l.visitors {
			if now.Sub(b.lastSeen) >= l.ttl {
				delete(l.visitors, id)
			}
		}
		l.lookups = 0
	}

	b, ok := l.visitors[senderID]
	if !ok {
		b = &senderBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[senderID] = b
	}
	b.lastSeen = now
	lim := b.limiter
	l.mu.Unlock()

	return lim.Allow()
}
