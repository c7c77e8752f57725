package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/essaypilot/essaypilot/internal/essay"
)

// MemoryRepo is an in-memory Repository used for unit tests and local runs
// without a database.
type MemoryRepo struct {
	mu       sync.RWMutex
	essays   map[string]*essay.Essay
	analyses map[string][]*essay.Analysis // essayID -> newest first
	seq      int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		essays:   make(map[string]*essay.Essay),
		analyses: make(map[string][]*essay.Analysis),
	}
}

func (m *MemoryRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *MemoryRepo) CreateEssay(ctx context.Context, e *essay.Essay) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = m.nextID("essay")
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	m.essays[e.ID] = &cp
	return e.ID, nil
}

func (m *MemoryRepo) GetEssay(ctx context.Context, id string) (*essay.Essay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.essays[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryRepo) ListByOwner(ctx context.Context, userID string) ([]*essay.Essay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*essay.Essay{}
	for _, e := range m.essays {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepo) UpdateEssay(ctx context.Context, e *essay.Essay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.essays[e.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = e.Title
	stored.Content = e.Content
	stored.TargetUniversity = e.TargetUniversity
	stored.UpdatedAt = time.Now().UTC()
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepo) DeleteEssay(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.essays[id]; !ok {
		return ErrNotFound
	}
	delete(m.essays, id)
	delete(m.analyses, id)
	return nil
}

func (m *MemoryRepo) InsertAnalysis(ctx context.Context, a *essay.Analysis) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = m.nextID("analysis")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Suggestions == nil {
		a.Suggestions = []essay.Suggestion{}
	}
	cp := *a
	m.analyses[a.EssayID] = append([]*essay.Analysis{&cp}, m.analyses[a.EssayID]...)
	return a.ID, nil
}

func (m *MemoryRepo) LatestAnalysis(ctx context.Context, essayID string) (*essay.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.analyses[essayID]
	if len(list) == 0 {
		return nil, nil
	}
	cp := *list[0]
	return &cp, nil
}
