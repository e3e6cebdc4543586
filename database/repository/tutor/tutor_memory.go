package tutorRepo

import (
	"context"
	"sync"
	"time"

	"guruconnect/models"
)

// MemoryTutorRepo keeps tutors in process memory. Used by tests and local runs without MongoDB.
type MemoryTutorRepo struct {
	mu     sync.RWMutex
	tutors map[string]models.Tutor
}

func NewMemoryTutorRepo(seed ...models.Tutor) *MemoryTutorRepo {
	r := &MemoryTutorRepo{tutors: make(map[string]models.Tutor)}
	for _, t := range seed {
		r.tutors[t.ID] = t
	}
	return r
}

func (r *MemoryTutorRepo) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tutors[id]
	if !ok {
		return nil, ErrTutorNotFound
	}
	t.Availability = append([]models.AvailabilityEntry(nil), t.Availability...)
	return &t, nil
}

func (r *MemoryTutorRepo) Create(ctx context.Context, tutor *models.Tutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tutors[tutor.ID] = *tutor
	return nil
}

func (r *MemoryTutorRepo) SetAvailability(ctx context.Context, id string, availability []models.AvailabilityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tutors[id]
	if !ok {
		return ErrTutorNotFound
	}
	t.Availability = append([]models.AvailabilityEntry(nil), availability...)
	t.UpdatedAt = time.Now()
	r.tutors[id] = t
	return nil
}
