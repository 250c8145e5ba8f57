package journal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryJournal keeps attempts in process memory
type MemoryJournal struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
	now      func() time.Time
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		attempts: make(map[string]Attempt),
		now:      time.Now,
	}
}

func (j *MemoryJournal) Get(ctx context.Context, key string) (*Attempt, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	a, ok := j.attempts[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (j *MemoryJournal) Create(ctx context.Context, a *Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.attempts[a.Key]; ok {
		return ErrAlreadyExists
	}
	now := j.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	j.attempts[a.Key] = *a
	return nil
}

func (j *MemoryJournal) Update(ctx context.Context, a *Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	existing, ok := j.attempts[a.Key]
	if !ok {
		return ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = j.now()
	j.attempts[a.Key] = *a
	return nil
}

// ListOpen returns unsettled attempts, oldest first
func (j *MemoryJournal) ListOpen(ctx context.Context) ([]*Attempt, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var open []*Attempt
	for _, a := range j.attempts {
		if a.Open() {
			a := a
			open = append(open, &a)
		}
	}
	sort.Slice(open, func(i, k int) bool {
		return open[i].CreatedAt.Before(open[k].CreatedAt)
	})
	return open, nil
}
