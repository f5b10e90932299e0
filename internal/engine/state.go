package engine

import (
	"math/big"
	"sync"

	"launch-curve/internal/domain"
)

// tokenState is the mutable per-token record. Each token carries its
// own lock so trades on different tokens never contend.
type tokenState struct {
	mu sync.RWMutex

	tokenID string
	creator string

	virtualEth   *big.Int
	virtualToken *big.Int
	realEth      *big.Int
	realToken    *big.Int

	creatorFees  *big.Int
	platformFees *big.Int
	totalVolume  *big.Int

	tradingEnabledAt int64
	lastTradeBlock   int64
	graduated        bool
}

func newTokenState(tokenID, creator string, p Params, tradingEnabledAt int64) *tokenState {
	return &tokenState{
		tokenID:          tokenID,
		creator:          creator,
		virtualEth:       new(big.Int).Set(p.VirtualEthSeed),
		virtualToken:     new(big.Int).Set(p.VirtualTokenSeed),
		realEth:          new(big.Int),
		realToken:        new(big.Int).Set(p.TotalSupply),
		creatorFees:      new(big.Int),
		platformFees:     new(big.Int),
		totalVolume:      new(big.Int),
		tradingEnabledAt: tradingEnabledAt,
		lastTradeBlock:   -1,
	}
}

// snapshot copies the state into an immutable view. Caller must hold at
// least a read lock.
func (s *tokenState) snapshot() *domain.TokenInfo {
	return &domain.TokenInfo{
		TokenID:             s.tokenID,
		Creator:             s.creator,
		VirtualEthReserve:   new(big.Int).Set(s.virtualEth),
		VirtualTokenReserve: new(big.Int).Set(s.virtualToken),
		RealEthReserve:      new(big.Int).Set(s.realEth),
		RealTokenReserve:    new(big.Int).Set(s.realToken),
		CreatorFees:         new(big.Int).Set(s.creatorFees),
		PlatformFees:        new(big.Int).Set(s.platformFees),
		TotalVolumeTraded:   new(big.Int).Set(s.totalVolume),
		TradingEnabledAt:    s.tradingEnabledAt,
		LastTradeBlock:      s.lastTradeBlock,
		Graduated:           s.graduated,
	}
}
