package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (token_id, block)
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]*domain.PricePoint),
	}
}

func pricePointKey(tokenID string, block int64) string {
	return fmt.Sprintf("%s|%d", tokenID, block)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (token_id, block).
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
		key := pricePointKey(p.TokenID, p.Block)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		copy := *p
		s.data[pricePointKey(p.TokenID, p.Block)] = &copy
	}
	return nil
}

// GetByTokenID retrieves all points for a token, ordered by block ASC.
func (s *PricePointStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.TokenID == tokenID {
			copy := *p
			result = append(result, &copy)
		}
	}
	sortPricePoints(result)
	return result, nil
}

// GetByTimeRange retrieves points for a token within [start, end] ms (inclusive).
func (s *PricePointStore) GetByTimeRange(_ context.Context, tokenID string, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.TokenID == tokenID && p.TimestampMs >= start && p.TimestampMs <= end {
			copy := *p
			result = append(result, &copy)
		}
	}
	sortPricePoints(result)
	return result, nil
}

func sortPricePoints(points []*domain.PricePoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Block < points[j].Block
	})
}

var _ storage.PricePointStore = (*PricePointStore)(nil)
