package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale session mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// SessionLocker serializes read-modify-write cycles on one intake session.
// Requests for different sessions never wait on each other.
//
// A background goroutine drops mutexes that have not been used recently.
// Call Stop() during graceful shutdown.
type SessionLocker struct {
	log *logrus.Logger

	sessionMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

func NewSessionLocker(log *logrus.Logger) *SessionLocker {
	l := &SessionLocker{
		log:      log,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Stop ends the cleanup goroutine. Safe to call multiple times.
func (l *SessionLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("SessionLocker stopped")
	}
}

// Lock acquires the session's mutex and returns the matching unlock.
func (l *SessionLocker) Lock(sessionID uuid.UUID) func() {
	mt, _ := l.sessionMu.LoadOrStore(sessionID, &mutexWithTimestamp{})
	m := mt.(*mutexWithTimestamp)
	m.lastUsed.Store(time.Now().Unix())
	m.mu.Lock()
	return m.mu.Unlock
}

// Forget drops the mutex of an ended session.
func (l *SessionLocker) Forget(sessionID uuid.UUID) {
	l.sessionMu.Delete(sessionID)
}

func (l *SessionLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Session lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStale(time.Now().Add(-lockStaleThreshold))
		}
	}
}

// cleanupStale removes unused mutexes. lastUsed is checked while holding the
// lock so a concurrent Lock cannot slip in between.
func (l *SessionLocker) cleanupStale(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	l.sessionMu.Range(func(key, value any) bool {
		m, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if m.mu.TryLock() {
			if m.lastUsed.Load() < cutoffUnix {
				l.sessionMu.Delete(key)
				cleaned++
			}
			m.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale session locks", cleaned)
	}
	return cleaned
}
