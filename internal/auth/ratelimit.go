package auth

import (
	"sync"
	"time"
)

// RateLimiter throttles failed login attempts per client IP and username.
// After MaxAttempts failures inside the window the pair is locked out.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	cfg      RateLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type attemptRecord struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter starts a limiter with a background sweep of stale records.
// Zero fields take their defaults. Call Stop to end the sweep.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = def.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether another attempt may be made, and if not, how long
// the caller should wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.attempts[key(ip, username)]
	if !ok {
		return true, 0
	}
	now := rl.now()
	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}
	if now.Sub(rec.windowStart) > rl.cfg.WindowDuration {
		return true, 0
	}
	return rec.count < rl.cfg.MaxAttempts, 0
}

// RecordFailure counts a failed attempt and reports whether it caused a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	k := key(ip, username)
	rec, ok := rl.attempts[k]
	if !ok || now.Sub(rec.windowStart) > rl.cfg.WindowDuration {
		rec = &attemptRecord{windowStart: now}
		rl.attempts[k] = rec
	}

	rec.count++
	if rec.count >= rl.cfg.MaxAttempts {
		rec.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true
	}
	return false
}

// RecordSuccess forgets all failures for the pair.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, key(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, rec := range rl.attempts {
		if now.Sub(rec.windowStart) > rl.cfg.WindowDuration && !now.Before(rec.lockedUntil) {
			delete(rl.attempts, k)
		}
	}
}

func key(ip, username string) string {
	return ip + "|" + username
}
