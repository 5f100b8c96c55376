package identity

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// LoginLimiter throttles credential checks per client IP
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	idle     time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLoginLimiter creates a limiter allowing rps attempts per second with the
// given burst. Limiters idle for longer than idle are dropped in the background.
func NewLoginLimiter(rps float64, burst int, idle time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     idle,
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow reports whether another attempt from key is permitted now
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastUsed = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// Cleanup drops limiters that have been idle too long
func (l *LoginLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.idle)
	for key, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *LoginLimiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}

// Len returns the number of tracked clients
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// clientIP returns the remote host of r. Forwarding headers are ignored since
// the identity server is not deployed behind a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
