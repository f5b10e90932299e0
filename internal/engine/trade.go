package engine

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"launch-curve/internal/curve"
	"launch-curve/internal/domain"
	"launch-curve/internal/events"
	"launch-curve/internal/idhash"
)

// splitFee returns the creator and platform portions of the trade fee
// on a gross notional amount. Both floor; the platform share absorbs
// the rounding remainder of the total.
func splitFee(gross *big.Int) (creatorFee, platformFee *big.Int) {
	total := new(big.Int).Mul(gross, big.NewInt(TotalFeeBps))
	total.Quo(total, big.NewInt(bpsDenom))
	creatorFee = new(big.Int).Mul(gross, big.NewInt(CreatorFeeBps))
	creatorFee.Quo(creatorFee, big.NewInt(bpsDenom))
	platformFee = new(big.Int).Sub(total, creatorFee)
	return creatorFee, platformFee
}

// checkTradable enforces the trade preconditions shared by buys and
// sells. Caller must hold the token's write lock.
func (e *Engine) checkTradable(st *tokenState, amount *big.Int, block int64) error {
	if st.graduated {
		return ErrGraduated
	}
	if block < st.tradingEnabledAt {
		return ErrTradingNotEnabled
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if block == st.lastTradeBlock {
		return ErrSameBlockTrade
	}
	return nil
}

// Buy swaps ethIn for tokens at the current curve price. The gross ETH
// amount drives the virtual reserves; the 3% fee is carved out of the
// real reserve side and accrued to the fee ledgers. minTokensOut of nil
// disables slippage protection.
func (e *Engine) Buy(trader, tokenID string, ethIn, minTokensOut *big.Int, block int64) (*domain.TradeRecord, error) {
	trade, err := e.executeBuy(trader, tokenID, ethIn, minTokensOut, block)
	if err != nil {
		e.countRejected(err)
		return nil, err
	}
	e.countExecuted(domain.SideBuy)
	return trade, nil
}

func (e *Engine) executeBuy(trader, tokenID string, ethIn, minTokensOut *big.Int, block int64) (*domain.TradeRecord, error) {
	if err := e.checkPaused(); err != nil {
		return nil, err
	}
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	if trader == "" {
		return nil, fmt.Errorf("engine: trader is required: %w", domain.ErrInvalidAddress)
	}

	st.mu.Lock()

	if err := e.checkTradable(st, ethIn, block); err != nil {
		st.mu.Unlock()
		return nil, err
	}

	tokensOut, err := curve.TokensOut(st.virtualEth, st.virtualToken, ethIn)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}
	if minTokensOut != nil && tokensOut.Cmp(minTokensOut) < 0 {
		st.mu.Unlock()
		return nil, ErrSlippageExceeded
	}
	if tokensOut.Cmp(st.virtualToken) >= 0 {
		st.mu.Unlock()
		return nil, ErrInsufficientLiquidity
	}

	creatorFee, platformFee := splitFee(ethIn)
	netEth := new(big.Int).Sub(ethIn, creatorFee)
	netEth.Sub(netEth, platformFee)

	// Commit. Virtual reserves absorb the gross input so pricing stays
	// continuous; the real ETH reserve holds only the net of fees.
	st.virtualEth.Add(st.virtualEth, ethIn)
	st.virtualToken.Sub(st.virtualToken, tokensOut)
	st.realEth.Add(st.realEth, netEth)
	st.realToken.Sub(st.realToken, tokensOut)
	if st.realToken.Sign() < 0 {
		st.realToken.SetInt64(0)
	}
	st.creatorFees.Add(st.creatorFees, creatorFee)
	st.platformFees.Add(st.platformFees, platformFee)
	st.totalVolume.Add(st.totalVolume, ethIn)
	st.lastTradeBlock = block

	price, err := curve.CurrentPrice(st.virtualEth, st.virtualToken)
	if err != nil {
		// Reserves are guarded positive above; a failure here is a bug.
		st.mu.Unlock()
		return nil, err
	}

	trade := &domain.TradeRecord{
		TradeID:             idhash.ComputeTradeID(tokenID, trader, domain.SideBuy, block),
		TokenID:             tokenID,
		Trader:              trader,
		Side:                domain.SideBuy,
		AmountIn:            new(big.Int).Set(ethIn),
		AmountOut:           tokensOut,
		CreatorFee:          creatorFee,
		PlatformFee:         platformFee,
		Price:               price,
		VirtualEthReserve:   new(big.Int).Set(st.virtualEth),
		VirtualTokenReserve: new(big.Int).Set(st.virtualToken),
		Block:               block,
		TimestampMs:         e.nowMs(),
	}

	graduation := e.maybeGraduate(st, trade)

	st.mu.Unlock()

	e.logger.Info("buy executed",
		zap.String("token_id", tokenID),
		zap.String("trade_id", trade.TradeID),
		zap.String("eth_in", trade.AmountIn.String()),
		zap.String("tokens_out", trade.AmountOut.String()),
		zap.Int64("block", block))

	e.publish(&events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: e.now()},
		Trade:     trade,
	})
	if graduation != nil {
		if e.metrics != nil {
			e.metrics.TokensGraduated.Inc()
		}
		e.logger.Info("token graduated",
			zap.String("token_id", tokenID),
			zap.String("market_cap_usd", graduation.MarketCapUSD.String()),
			zap.Int64("block", block))
		e.publish(&events.TokenGraduatedEvent{
			BaseEvent:  events.BaseEvent{EventType: events.TokenGraduated, EventTime: e.now()},
			Graduation: graduation,
		})
	}

	return trade, nil
}

// Sell swaps tokensIn for ETH at the current curve price. The fee is
// taken from the gross ETH output: the trader is credited the net
// amount while the real reserve releases the gross. minEthOut of nil
// disables slippage protection.
func (e *Engine) Sell(trader, tokenID string, tokensIn, minEthOut *big.Int, block int64) (*domain.TradeRecord, error) {
	trade, err := e.executeSell(trader, tokenID, tokensIn, minEthOut, block)
	if err != nil {
		e.countRejected(err)
		return nil, err
	}
	e.countExecuted(domain.SideSell)
	return trade, nil
}

func (e *Engine) executeSell(trader, tokenID string, tokensIn, minEthOut *big.Int, block int64) (*domain.TradeRecord, error) {
	if err := e.checkPaused(); err != nil {
		return nil, err
	}
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}
	if trader == "" {
		return nil, fmt.Errorf("engine: trader is required: %w", domain.ErrInvalidAddress)
	}

	st.mu.Lock()

	if err := e.checkTradable(st, tokensIn, block); err != nil {
		st.mu.Unlock()
		return nil, err
	}

	// Curve supply is fixed: accepting tokensIn may not push the real
	// token reserve past the total supply.
	returned := new(big.Int).Add(st.realToken, tokensIn)
	if returned.Cmp(e.params.TotalSupply) > 0 {
		st.mu.Unlock()
		return nil, ErrInsufficientLiquidity
	}

	ethOut, err := curve.EthOut(st.virtualEth, st.virtualToken, tokensIn)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}
	if ethOut.Cmp(st.realEth) > 0 {
		st.mu.Unlock()
		return nil, ErrInsufficientLiquidity
	}

	creatorFee, platformFee := splitFee(ethOut)
	netEth := new(big.Int).Sub(ethOut, creatorFee)
	netEth.Sub(netEth, platformFee)

	if minEthOut != nil && netEth.Cmp(minEthOut) < 0 {
		st.mu.Unlock()
		return nil, ErrSlippageExceeded
	}

	st.virtualToken.Add(st.virtualToken, tokensIn)
	st.virtualEth.Sub(st.virtualEth, ethOut)
	st.realEth.Sub(st.realEth, ethOut)
	st.realToken.Add(st.realToken, tokensIn)
	st.creatorFees.Add(st.creatorFees, creatorFee)
	st.platformFees.Add(st.platformFees, platformFee)
	st.totalVolume.Add(st.totalVolume, ethOut)
	st.lastTradeBlock = block

	price, err := curve.CurrentPrice(st.virtualEth, st.virtualToken)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}

	trade := &domain.TradeRecord{
		TradeID:             idhash.ComputeTradeID(tokenID, trader, domain.SideSell, block),
		TokenID:             tokenID,
		Trader:              trader,
		Side:                domain.SideSell,
		AmountIn:            new(big.Int).Set(tokensIn),
		AmountOut:           netEth,
		CreatorFee:          creatorFee,
		PlatformFee:         platformFee,
		Price:               price,
		VirtualEthReserve:   new(big.Int).Set(st.virtualEth),
		VirtualTokenReserve: new(big.Int).Set(st.virtualToken),
		Block:               block,
		TimestampMs:         e.nowMs(),
	}

	st.mu.Unlock()

	e.logger.Info("sell executed",
		zap.String("token_id", tokenID),
		zap.String("trade_id", trade.TradeID),
		zap.String("tokens_in", trade.AmountIn.String()),
		zap.String("eth_out", trade.AmountOut.String()),
		zap.Int64("block", block))

	e.publish(&events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: e.now()},
		Trade:     trade,
	})

	return trade, nil
}

// maybeGraduate checks the post-trade market cap against the threshold
// and flips the token's graduated flag if crossed. Graduation is
// one-way and only evaluated on buys. Caller must hold the token's
// write lock.
func (e *Engine) maybeGraduate(st *tokenState, trade *domain.TradeRecord) *domain.GraduationRecord {
	mc := curve.MarketCap(trade.Price, e.params.TotalSupply, e.rates.EthUsdRate())
	if mc.Cmp(e.params.GraduationThresholdUSD) < 0 {
		return nil
	}
	st.graduated = true
	return &domain.GraduationRecord{
		TokenID:           st.tokenID,
		TriggeringTradeID: trade.TradeID,
		MarketCapUSD:      mc,
		Block:             trade.Block,
		TimestampMs:       trade.TimestampMs,
	}
}
