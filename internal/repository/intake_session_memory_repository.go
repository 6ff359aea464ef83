package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ae-triage-intake/internal/domain/entity"
	domainRepo "ae-triage-intake/internal/domain/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Interval between expired-session sweeps
const sessionSweepInterval = time.Minute

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryIntakeSessionRepository keeps sessions in process memory. Each entry
// is stored as encoded JSON so callers never share a live aggregate.
//
// A background goroutine drops expired sessions. Call Stop() during
// graceful shutdown.
type MemoryIntakeSessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]memorySession
	ttl      time.Duration
	now      func() time.Time
	log      *logrus.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

var _ domainRepo.IntakeSessionRepository = (*MemoryIntakeSessionRepository)(nil)

func NewMemoryIntakeSessionRepository(ttl time.Duration, log *logrus.Logger) *MemoryIntakeSessionRepository {
	repo := &MemoryIntakeSessionRepository{
		sessions: make(map[uuid.UUID]memorySession),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		stopChan: make(chan struct{}),
	}

	repo.wg.Add(1)
	go repo.sweepLoop()

	return repo
}

// Stop ends the sweeper. Safe to call multiple times.
func (r *MemoryIntakeSessionRepository) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		close(r.stopChan)
		r.wg.Wait()
		r.log.Info("Memory session store stopped")
	}
}

func (r *MemoryIntakeSessionRepository) Create(ctx context.Context, intake *entity.Intake) error {
	payload, err := json.Marshal(intake)
	if err != nil {
		return fmt.Errorf("encode intake %s: %w", intake.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[intake.ID]; ok && r.now().Before(s.expiresAt) {
		return domainRepo.ErrSessionExists
	}
	r.sessions[intake.ID] = memorySession{payload: payload, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *MemoryIntakeSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Intake, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || !r.now().Before(s.expiresAt) {
		return nil, nil
	}

	var intake entity.Intake
	if err := json.Unmarshal(s.payload, &intake); err != nil {
		return nil, fmt.Errorf("decode intake %s: %w", id, err)
	}
	return &intake, nil
}

// Update replaces the stored aggregate. The expiry set at Create is kept,
// matching the session token's lifetime.
func (r *MemoryIntakeSessionRepository) Update(ctx context.Context, intake *entity.Intake) error {
	payload, err := json.Marshal(intake)
	if err != nil {
		return fmt.Errorf("encode intake %s: %w", intake.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[intake.ID]
	if !ok || !r.now().Before(s.expiresAt) {
		return domainRepo.ErrSessionNotFound
	}
	r.sessions[intake.ID] = memorySession{payload: payload, expiresAt: s.expiresAt}
	return nil
}

func (r *MemoryIntakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domainRepo.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (r *MemoryIntakeSessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *MemoryIntakeSessionRepository) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			r.log.Debug("Session sweeper stopping")
			return
		case <-ticker.C:
			r.sweepExpired()
		}
	}
}

func (r *MemoryIntakeSessionRepository) sweepExpired() {
	now := r.now()
	var cleaned int

	r.mu.Lock()
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
			cleaned++
		}
	}
	r.mu.Unlock()

	if cleaned > 0 {
		r.log.Debugf("Dropped %d expired intake sessions", cleaned)
	}
}
