// Package engine implements the bonding-curve trade engine: token
// listing, buy and sell execution against virtual reserves, fee
// accrual and claims, graduation, and the global pause guard.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"launch-curve/internal/domain"
	"launch-curve/internal/events"
	"launch-curve/internal/observability"
)

// Publisher receives engine events after state commits. Publication is
// best-effort: a failed publish never rolls back a trade.
type Publisher interface {
	Publish(event events.Event) error
}

// Engine is the in-memory curve state machine. All mutating operations
// are atomic per token: they either fully apply or leave the token
// unchanged.
type Engine struct {
	params    Params
	rates     RateSource
	publisher Publisher
	logger    *zap.Logger
	metrics   *observability.Metrics

	// now is injectable for deterministic tests and replays.
	now func() time.Time

	mu     sync.RWMutex
	tokens map[string]*tokenState

	pauseMu sync.RWMutex
	paused  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine with the given launch parameters.
func New(params Params, rates RateSource, publisher Publisher, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rates == nil {
		return nil, fmt.Errorf("engine: rate source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		params:    params,
		rates:     rates,
		publisher: publisher,
		logger:    logger.Named("engine"),
		now:       time.Now,
		tokens:    make(map[string]*tokenState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// InitializeToken lists a new token on the curve with seeded virtual
// reserves, the full supply in the real token reserve, and zeroed fee
// ledgers. Trading opens at tradingEnabledAt (inclusive).
func (e *Engine) InitializeToken(tokenID, creator string, tradingEnabledAt int64) (*domain.TokenInfo, error) {
	if err := e.checkPaused(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAddress(tokenID); err != nil {
		return nil, err
	}
	if creator == "" {
		return nil, fmt.Errorf("engine: creator is required: %w", domain.ErrInvalidAddress)
	}

	e.mu.Lock()
	if _, ok := e.tokens[tokenID]; ok {
		e.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}
	st := newTokenState(tokenID, creator, e.params, tradingEnabledAt)
	e.tokens[tokenID] = st
	e.mu.Unlock()

	e.logger.Info("token initialized",
		zap.String("token_id", tokenID),
		zap.String("creator", creator),
		zap.Int64("trading_enabled_at", tradingEnabledAt))
	if e.metrics != nil {
		e.metrics.TokensInitialized.Inc()
	}

	e.publish(&events.TokenInitializedEvent{
		BaseEvent:        events.BaseEvent{EventType: events.TokenInitialized, EventTime: e.now()},
		TokenID:          tokenID,
		Creator:          creator,
		TradingEnabledAt: tradingEnabledAt,
	})

	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot(), nil
}

// token looks up a token's state.
func (e *Engine) token(tokenID string) (*tokenState, error) {
	e.mu.RLock()
	st, ok := e.tokens[tokenID]
	e.mu.RUnlock()
	if !ok {
		return nil, ErrNotInitialized
	}
	return st, nil
}

func (e *Engine) checkPaused() error {
	e.pauseMu.RLock()
	defer e.pauseMu.RUnlock()
	if e.paused {
		return ErrPaused
	}
	return nil
}

// publish forwards an event to the publisher, logging and dropping on
// failure. State is already committed by the time this runs.
func (e *Engine) publish(ev events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ev); err != nil {
		e.logger.Warn("event publish failed",
			zap.String("event_type", string(ev.Type())),
			zap.Error(err))
	}
}

func (e *Engine) nowMs() int64 {
	return e.now().UnixMilli()
}

func (e *Engine) countExecuted(side string) {
	if e.metrics != nil {
		e.metrics.TradesExecuted.WithLabelValues(side).Inc()
	}
}

func (e *Engine) countRejected(err error) {
	if e.metrics != nil {
		e.metrics.TradesRejected.WithLabelValues(rejectReason(err)).Inc()
	}
}

// rejectReason maps a trade error to a bounded metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrPaused):
		return "paused"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrGraduated):
		return "graduated"
	case errors.Is(err, ErrTradingNotEnabled):
		return "trading_not_enabled"
	case errors.Is(err, ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ErrSameBlockTrade):
		return "same_block"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	default:
		return "other"
	}
}
