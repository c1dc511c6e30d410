package memory

import (
	"context"
	"sync"
	"time"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo is a process-local session store. Sessions idle for longer than ttl are
// treated as absent on read and removed by Sweep.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]model.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]model.Session), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (r *SessionRepo) WithClock(now func() time.Time) *SessionRepo {
	r.now = now
	return r
}

func (r *SessionRepo) GetSession(_ context.Context, operatorID int64) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[operatorID]
	if !ok {
		return nil, nil
	}
	if s.Expired(r.now(), r.ttl) {
		delete(r.sessions, operatorID)
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) SaveSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = r.now()
	}
	r.sessions[s.OperatorID] = s
	return nil
}

func (r *SessionRepo) ClearSession(_ context.Context, operatorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, operatorID)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (r *SessionRepo) Sweep(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if s.Expired(now, r.ttl) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions, expired ones included.
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
