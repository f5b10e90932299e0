// Package memory provides in-memory store implementations, used by the
// simulator and as test doubles for the SQL-backed stores.
package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecord // keyed by trade ID
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.TradeRecord),
	}
}

// cloneBig copies a big.Int, tolerating nil.
func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// cloneTrade deep-copies a trade so stored records never share big.Int
// values with the caller.
func cloneTrade(t *domain.TradeRecord) *domain.TradeRecord {
	c := *t
	c.AmountIn = cloneBig(t.AmountIn)
	c.AmountOut = cloneBig(t.AmountOut)
	c.CreatorFee = cloneBig(t.CreatorFee)
	c.PlatformFee = cloneBig(t.PlatformFee)
	c.Price = cloneBig(t.Price)
	c.VirtualEthReserve = cloneBig(t.VirtualEthReserve)
	c.VirtualTokenReserve = cloneBig(t.VirtualTokenReserve)
	return &c
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, trade *domain.TradeRecord) error {
	if trade == nil || trade.TradeID == "" || trade.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[trade.TradeID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[trade.TradeID] = cloneTrade(trade)
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trade, ok := s.data[tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneTrade(trade), nil
}

// GetByTokenID retrieves all trades for a token, ordered by block ASC.
func (s *TradeStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, trade := range s.data {
		if trade.TokenID == tokenID {
			result = append(result, cloneTrade(trade))
		}
	}
	sortTrades(result)
	return result, nil
}

// GetByBlockRange retrieves trades for a token within [start, end] (inclusive).
func (s *TradeStore) GetByBlockRange(_ context.Context, tokenID string, start, end int64) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, trade := range s.data {
		if trade.TokenID == tokenID && trade.Block >= start && trade.Block <= end {
			result = append(result, cloneTrade(trade))
		}
	}
	sortTrades(result)
	return result, nil
}

func sortTrades(trades []*domain.TradeRecord) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Block != trades[j].Block {
			return trades[i].Block < trades[j].Block
		}
		return trades[i].TimestampMs < trades[j].TimestampMs
	})
}

var _ storage.TradeStore = (*TradeStore)(nil)
