package services

import (
	"sync"
	"time"
)

type loginAttempt struct {
	count     int
	lastTry   time.Time
	lockUntil time.Time
}

// LoginLimiter locks a phone number out after too many failed logins
type LoginLimiter struct {
	mu           sync.RWMutex
	attempts     map[string]*loginAttempt
	maxAttempts  int
	lockDuration time.Duration
	now          func() time.Time
}

// NewLoginLimiter creates a limiter and starts a goroutine that drops stale
// entries every cleanInterval
func NewLoginLimiter(maxAttempts int, lockDuration, cleanInterval time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts:     make(map[string]*loginAttempt),
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		now:          time.Now,
	}
	if cleanInterval > 0 {
		go l.cleanupRoutine(cleanInterval)
	}
	return l
}

func (l *LoginLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		l.cleanup()
	}
}

func (l *LoginLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, a := range l.attempts {
		if now.After(a.lockUntil) && now.Sub(a.lastTry) > 24*time.Hour {
			delete(l.attempts, key)
		}
	}
}

// RecordFailure counts a failed login and reports whether it caused a lock
func (l *LoginLimiter) RecordFailure(key string) (locked bool, minutes int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.attempts[key]
	if !ok {
		a = &loginAttempt{}
		l.attempts[key] = a
	}
	a.count++
	a.lastTry = now

	if a.count >= l.maxAttempts {
		a.lockUntil = now.Add(l.lockDuration)
		a.count = 0
		return true, int(l.lockDuration.Minutes())
	}
	return false, 0
}

// IsLocked reports whether key is locked and for how many more minutes
func (l *LoginLimiter) IsLocked(key string) (bool, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.attempts[key]
	if !ok {
		return false, 0
	}
	now := l.now()
	if now.Before(a.lockUntil) {
		return true, int(a.lockUntil.Sub(now).Minutes()) + 1
	}
	return false, 0
}

// Reset forgets the failures for key
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
