package memory

import (
	"context"
	"sort"
	"sync"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// GraduationStore is an in-memory implementation of storage.GraduationStore.
type GraduationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GraduationRecord // keyed by token ID
}

// NewGraduationStore creates a new in-memory graduation store.
func NewGraduationStore() *GraduationStore {
	return &GraduationStore{
		data: make(map[string]*domain.GraduationRecord),
	}
}

func cloneGraduation(g *domain.GraduationRecord) *domain.GraduationRecord {
	c := *g
	c.MarketCapUSD = cloneBig(g.MarketCapUSD)
	return &c
}

// Insert adds a graduation record. Returns ErrDuplicateKey if token_id exists.
func (s *GraduationStore) Insert(_ context.Context, g *domain.GraduationRecord) error {
	if g == nil || g.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[g.TokenID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[g.TokenID] = cloneGraduation(g)
	return nil
}

// GetByTokenID retrieves a token's graduation. Returns ErrNotFound if not exists.
func (s *GraduationStore) GetByTokenID(_ context.Context, tokenID string) (*domain.GraduationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.data[tokenID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneGraduation(g), nil
}

// List retrieves all graduations, ordered by block ASC.
func (s *GraduationStore) List(_ context.Context) ([]*domain.GraduationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.GraduationRecord, 0, len(s.data))
	for _, g := range s.data {
		result = append(result, cloneGraduation(g))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Block != result[j].Block {
			return result[i].Block < result[j].Block
		}
		return result[i].TokenID < result[j].TokenID
	})
	return result, nil
}

var _ storage.GraduationStore = (*GraduationStore)(nil)
