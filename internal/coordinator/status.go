package coordinator

import (
	"sync"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

// StatusTracker holds the global backend status.
type StatusTracker struct {
	mu        sync.RWMutex
	status    models.DBStatus
	lastErr   string
	changedAt time.Time
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: models.DBLoading, changedAt: time.Now()}
}

func (s *StatusTracker) Set(status models.DBStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
	s.changedAt = time.Now()
}

func (s *StatusTracker) Get() models.DBStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns the status with the last error message, if any.
func (s *StatusTracker) Snapshot() (models.DBStatus, string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastErr, s.changedAt
}
