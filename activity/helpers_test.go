package activity

import (
	"sync"
	"time"

	"curator/models"
)

// sequence replays fixed samples, repeating the last one once exhausted.
type sequence struct {
	mu      sync.Mutex
	samples []float64
	next    int
}

func newSequence(samples ...float64) *sequence {
	return &sequence{samples: samples}
}

func (s *sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.samples[min(s.next, len(s.samples)-1)]
	s.next++
	return v
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestUser(id string, tokens int64) *models.User {
	return models.NewUser("guild", id, id, tokens)
}
