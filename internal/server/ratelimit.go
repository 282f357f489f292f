package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
)

// LoginRateLimiter locks an IP out after repeated wrong passphrases. Each
// further lockout doubles, up to the configured cap.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptInfo
	maxAttempts int
	lockout     time.Duration
	maxLockout  time.Duration
	sweepEvery  time.Duration
	stop        chan struct{}
	stopOnce    sync.Once

	now func() time.Time
}

type attemptInfo struct {
	failures    int
	lockouts    int
	lockedUntil time.Time
}

// NewLoginRateLimiter creates a limiter and starts its sweeper goroutine.
// Call Stop to end it.
func NewLoginRateLimiter(cfg config.RateLimitConfig) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: cfg.MaxAttempts,
		lockout:     time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		sweepEvery:  5 * time.Minute,
		stop:        make(chan struct{}),
		now:         time.Now,
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = rl.lockout
	}

	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// IsLocked reports whether ip is locked out and for how much longer.
func (rl *LoginRateLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		return false, 0
	}
	if left := info.lockedUntil.Sub(rl.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailure counts a failed login and reports whether ip is now locked.
func (rl *LoginRateLimiter) RecordFailure(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		info = &attemptInfo{}
		rl.attempts[ip] = info
	}
	now := rl.now()
	if left := info.lockedUntil.Sub(now); left > 0 {
		return true, left
	}

	info.failures++
	if info.failures < rl.maxAttempts {
		return false, 0
	}

	info.lockouts++
	d := rl.lockout
	for i := 1; i < info.lockouts && d < rl.maxLockout; i++ {
		d *= 2
	}
	if d > rl.maxLockout {
		d = rl.maxLockout
	}
	info.lockedUntil = now.Add(d)
	info.failures = 0
	return true, d
}

// RecordSuccess forgets ip's failures.
func (rl *LoginRateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// Failures returns the failures counted toward ip's next lockout.
func (rl *LoginRateLimiter) Failures(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.attempts[ip]; ok {
		return info.failures
	}
	return 0
}

func (rl *LoginRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops IPs that have been unlocked for a while with no new failures.
func (rl *LoginRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.attempts {
		if info.failures == 0 && info.lockedUntil.Before(cutoff) {
			delete(rl.attempts, ip)
		}
	}
}
