package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arimitra/healthmate/internal/model"
	"github.com/google/uuid"
)

// MemoryStore keeps reminders in process memory. It backs tests and
// database-less deployments behind the same ReminderStore contract.
type MemoryStore struct {
	mu        sync.RWMutex
	reminders map[string]model.Reminder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reminders: make(map[string]model.Reminder)}
}

func (s *MemoryStore) Insert(_ context.Context, rec *model.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.reminders[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.ReminderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.ReminderSummary, 0, len(s.reminders))
	for _, rec := range s.reminders {
		summaries = append(summaries, model.ReminderSummary{
			ID:           rec.ID,
			MedicineName: rec.MedicineName,
			ReminderTime: rec.ReminderTime,
			Phone:        rec.Phone,
			Email:        rec.Email,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ReminderTime.Before(summaries[j].ReminderTime)
	})
	return summaries, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}
