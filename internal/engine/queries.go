package engine

import (
	"math/big"

	"launch-curve/internal/curve"
	"launch-curve/internal/domain"
)

// Read-only queries. All of them stay available while the engine is
// paused.

// GetTokenInfo returns a consistent snapshot of a token's curve state.
func (e *Engine) GetTokenInfo(tokenID string) (*domain.TokenInfo, error) {
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot(), nil
}

// GetCurrentPrice returns the spot price implied by a token's virtual
// reserves, 1e18-scaled ETH per whole token.
func (e *Engine) GetCurrentPrice(tokenID string) (*big.Int, error) {
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return curve.CurrentPrice(st.virtualEth, st.virtualToken)
}

// GetMarketCap returns a token's 1e18-scaled USD market cap at the
// current spot price and conversion rate.
func (e *Engine) GetMarketCap(tokenID string) (*big.Int, error) {
	price, err := e.GetCurrentPrice(tokenID)
	if err != nil {
		return nil, err
	}
	return curve.MarketCap(price, e.params.TotalSupply, e.rates.EthUsdRate()), nil
}

// QuoteBuy quotes the tokens a buy of ethIn would return right now,
// without mutating state or consuming the token's block slot.
func (e *Engine) QuoteBuy(tokenID string, ethIn *big.Int) (*domain.Quote, error) {
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	if ethIn == nil || ethIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	tokensOut, err := curve.TokensOut(st.virtualEth, st.virtualToken, ethIn)
	if err != nil {
		return nil, err
	}
	price, err := curve.CurrentPrice(st.virtualEth, st.virtualToken)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		TokenID:   tokenID,
		Side:      domain.SideBuy,
		AmountIn:  new(big.Int).Set(ethIn),
		AmountOut: tokensOut,
		Price:     price,
	}, nil
}

// QuoteSell quotes the net ETH a sell of tokensIn would credit right
// now, fee deducted, without mutating state.
func (e *Engine) QuoteSell(tokenID string, tokensIn *big.Int) (*domain.Quote, error) {
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	if tokensIn == nil || tokensIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	ethOut, err := curve.EthOut(st.virtualEth, st.virtualToken, tokensIn)
	if err != nil {
		return nil, err
	}
	creatorFee, platformFee := splitFee(ethOut)
	net := new(big.Int).Sub(ethOut, creatorFee)
	net.Sub(net, platformFee)

	price, err := curve.CurrentPrice(st.virtualEth, st.virtualToken)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		TokenID:   tokenID,
		Side:      domain.SideSell,
		AmountIn:  new(big.Int).Set(tokensIn),
		AmountOut: net,
		Price:     price,
	}, nil
}

// ListTokenIDs returns the IDs of every listed token.
func (e *Engine) ListTokenIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.tokens))
	for id := range e.tokens {
		ids = append(ids, id)
	}
	return ids
}
