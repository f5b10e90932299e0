package engine

import (
	"math/big"

	"go.uber.org/zap"

	"launch-curve/internal/domain"
	"launch-curve/internal/events"
	"launch-curve/internal/idhash"
)

// ClaimCreatorFees transfers a token's accrued creator fees to the
// caller and zeroes the ledger. Only the token's creator may claim.
func (e *Engine) ClaimCreatorFees(caller, tokenID string) (*domain.FeeClaim, error) {
	if err := e.checkPaused(); err != nil {
		return nil, err
	}
	st, err := e.token(tokenID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if caller != st.creator {
		st.mu.Unlock()
		return nil, ErrNotCreator
	}
	if st.creatorFees.Sign() == 0 {
		st.mu.Unlock()
		return nil, ErrNothingToClaim
	}
	amount := new(big.Int).Set(st.creatorFees)
	st.creatorFees.SetInt64(0)
	st.mu.Unlock()

	ts := e.nowMs()
	claim := &domain.FeeClaim{
		ClaimID:     idhash.ComputeClaimID(domain.ClaimKindCreator, caller, tokenID, ts),
		Kind:        domain.ClaimKindCreator,
		Claimant:    caller,
		TokenID:     tokenID,
		Amount:      amount,
		TimestampMs: ts,
	}

	if e.metrics != nil {
		e.metrics.FeesClaimed.WithLabelValues(domain.ClaimKindCreator).Inc()
	}
	e.logger.Info("creator fees claimed",
		zap.String("token_id", tokenID),
		zap.String("claimant", caller),
		zap.String("amount", amount.String()))

	e.publish(&events.FeesClaimedEvent{
		BaseEvent: events.BaseEvent{EventType: events.FeesClaimed, EventTime: e.now()},
		Claim:     claim,
	})
	return claim, nil
}

// ClaimPlatformFees sweeps the accrued platform fees of every token to
// the configured recipient and zeroes the ledgers. Only the platform
// recipient may claim.
func (e *Engine) ClaimPlatformFees(caller string) (*domain.FeeClaim, error) {
	if err := e.checkPaused(); err != nil {
		return nil, err
	}
	if caller != e.params.PlatformRecipient {
		return nil, ErrNotRecipient
	}

	e.mu.RLock()
	states := make([]*tokenState, 0, len(e.tokens))
	for _, st := range e.tokens {
		states = append(states, st)
	}
	e.mu.RUnlock()

	total := new(big.Int)
	for _, st := range states {
		st.mu.Lock()
		total.Add(total, st.platformFees)
		st.platformFees.SetInt64(0)
		st.mu.Unlock()
	}
	if total.Sign() == 0 {
		return nil, ErrNothingToClaim
	}

	ts := e.nowMs()
	claim := &domain.FeeClaim{
		ClaimID:     idhash.ComputeClaimID(domain.ClaimKindPlatform, caller, "", ts),
		Kind:        domain.ClaimKindPlatform,
		Claimant:    caller,
		Amount:      total,
		TimestampMs: ts,
	}

	if e.metrics != nil {
		e.metrics.FeesClaimed.WithLabelValues(domain.ClaimKindPlatform).Inc()
	}
	e.logger.Info("platform fees claimed",
		zap.String("claimant", caller),
		zap.String("amount", total.String()),
		zap.Int("tokens_swept", len(states)))

	e.publish(&events.FeesClaimedEvent{
		BaseEvent: events.BaseEvent{EventType: events.FeesClaimed, EventTime: e.now()},
		Claim:     claim,
	})
	return claim, nil
}
