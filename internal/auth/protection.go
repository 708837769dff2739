// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Protection provides combined per-identifier login throttling and account
// lockout with exponential backoff. The gateway consults it before and after
// every credential check; identifiers are normalized emails.
type Protection struct {
	limiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int           // Lock account after this many failures
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration // Window to count failed attempts
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // Number of times account has been locked (for exponential backoff)
}

// ProtectionConfig holds configuration for login protection.
type ProtectionConfig struct {
	// AttemptRate is login attempts per second per identifier (default: 0.5 = 1 per 2 seconds)
	AttemptRate float64
	// AttemptBurst is the maximum burst size for the attempt limiter (default: 5)
	AttemptBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultProtectionConfig returns sensible defaults.
func DefaultProtectionConfig() ProtectionConfig {
	return ProtectionConfig{
		AttemptRate:       0.5,
		AttemptBurst:      5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewProtection creates a new login protection instance.
func NewProtection(cfg ProtectionConfig) *Protection {
	if cfg.AttemptRate <= 0 {
		cfg.AttemptRate = 0.5
	}
	if cfg.AttemptBurst <= 0 {
		cfg.AttemptBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	p := &Protection{
		limiters:          newLimiterCache[string](cfg.AttemptRate, cfg.AttemptBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}

	go p.cleanup()

	return p
}

// Allow checks the attempt rate limiter for an identifier.
// Returns true if the attempt should proceed.
func (p *Protection) Allow(identifier string) bool {
	return p.limiters.get(identifier).Allow()
}

// IsLocked checks if an account is currently locked.
// Returns (locked, remainingTime).
func (p *Protection) IsLocked(identifier string) (bool, time.Duration) {
	p.attemptsMu.RLock()
	attempt, exists := p.failedAttempts[identifier]
	p.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}

	return false, 0
}

// RecordFailure records a failed login attempt.
// Returns (locked, lockDuration) if the account is now locked.
func (p *Protection) RecordFailure(identifier string) (bool, time.Duration) {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := p.failedAttempts[identifier]

	if !exists {
		attempt = &loginAttempt{
			count:       1,
			firstFailed: now,
		}
		p.failedAttempts[identifier] = attempt
		slog.Debug("login attempt recorded", "identifier", identifier, "count", 1)
		return false, 0
	}

	// If the attempt window has passed, reset the counter
	if now.Sub(attempt.firstFailed) > p.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		slog.Debug("login attempt window reset", "identifier", identifier, "count", 1)
		return false, 0
	}

	attempt.count++
	slog.Debug("login attempt recorded", "identifier", identifier, "count", attempt.count)

	if attempt.count >= p.maxFailedAttempts {
		// Calculate lockout duration with exponential backoff
		lockDuration := p.lockoutDuration
		for i := 0; i < attempt.lockouts; i++ {
			lockDuration *= 2
			// Cap at 24 hours
			if lockDuration > 24*time.Hour {
				lockDuration = 24 * time.Hour
				break
			}
		}

		attempt.lockedUntil = now.Add(lockDuration)
		attempt.lockouts++
		attempt.count = 0 // Reset count after lockout

		slog.Warn("account locked due to failed attempts",
			"identifier", identifier,
			"lockouts", attempt.lockouts,
			"duration", lockDuration,
		)

		return true, lockDuration
	}

	return false, 0
}

// RecordSuccess clears failed attempt tracking for an account.
func (p *Protection) RecordSuccess(identifier string) {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()

	delete(p.failedAttempts, identifier)
	slog.Debug("login attempts cleared", "identifier", identifier)
}

// RemainingAttempts returns the number of remaining attempts before lockout.
func (p *Protection) RemainingAttempts(identifier string) int {
	p.attemptsMu.RLock()
	attempt, exists := p.failedAttempts[identifier]
	p.attemptsMu.RUnlock()

	if !exists {
		return p.maxFailedAttempts
	}

	if time.Since(attempt.firstFailed) > p.attemptWindow {
		return p.maxFailedAttempts
	}

	remaining := p.maxFailedAttempts - attempt.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup periodically removes stale entries.
func (p *Protection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		p.cleanupStaleEntries()
	}
}

func (p *Protection) cleanupStaleEntries() {
	now := time.Now()

	if p.limiters.clearIfExceeds(10000) {
		slog.Info("cleared login rate limiters due to size")
	}

	p.attemptsMu.Lock()
	for identifier, attempt := range p.failedAttempts {
		// Remove if lockout has expired and no recent attempts
		if now.After(attempt.lockedUntil) &&
			now.Sub(attempt.firstFailed) > p.attemptWindow {
			delete(p.failedAttempts, identifier)
		}
	}
	p.attemptsMu.Unlock()
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}
