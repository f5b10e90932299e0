// Package recorder subscribes to engine events and persists them to
// durable storage. Persistence is post-commit: the engine state is
// authoritative and a storage failure never rolls back a trade, it is
// retried and finally surfaced as a reconciliation warning.
package recorder

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"launch-curve/internal/domain"
	"launch-curve/internal/events"
	"launch-curve/internal/observability"
	"launch-curve/internal/storage"
)

const defaultMaxElapsed = 15 * time.Second

// Recorder writes trades, graduations and price points emitted on the
// event bus to their stores.
type Recorder struct {
	trades      storage.TradeStore
	graduations storage.GraduationStore
	prices      storage.PricePointStore
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxElapsed  time.Duration
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMaxElapsedTime bounds the total retry window per write.
func WithMaxElapsedTime(d time.Duration) Option {
	return func(r *Recorder) { r.maxElapsed = d }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// New creates a recorder. The price point store may be nil when no
// timeseries sink is configured.
func New(trades storage.TradeStore, graduations storage.GraduationStore, prices storage.PricePointStore, logger *zap.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		trades:      trades,
		graduations: graduations,
		prices:      prices,
		logger:      logger.Named("recorder"),
		maxElapsed:  defaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach subscribes the recorder to the bus. The returned subscriptions
// can be used to detach.
func (r *Recorder) Attach(bus *events.Bus) []*events.Subscription {
	return []*events.Subscription{
		bus.SubscribeFunc(events.TradeExecuted, r.handleTrade),
		bus.SubscribeFunc(events.TokenGraduated, r.handleGraduation),
	}
}

func (r *Recorder) handleTrade(ctx context.Context, ev events.Event) error {
	e, ok := ev.(*events.TradeExecutedEvent)
	if !ok || e.Trade == nil {
		return nil
	}
	trade := e.Trade

	if err := r.insertWithRetry(ctx, "trades", func(ctx context.Context) error {
		return r.trades.Insert(ctx, trade)
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Replayed event, the trade is already recorded.
			r.logger.Debug("trade already persisted", zap.String("trade_id", trade.TradeID))
			return nil
		}
		r.logger.Error("trade not persisted, ledger and storage have diverged",
			zap.String("trade_id", trade.TradeID),
			zap.String("token_id", trade.TokenID),
			zap.Error(err))
		return err
	}
	if r.metrics != nil {
		r.metrics.TradesPersisted.Inc()
	}

	if r.prices == nil {
		return nil
	}
	point := pricePointFromTrade(trade)
	if err := r.insertWithRetry(ctx, "price_timeseries", func(ctx context.Context) error {
		return r.prices.InsertBulk(ctx, []*domain.PricePoint{point})
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil
		}
		// The timeseries is informational, log and move on.
		r.logger.Warn("price point not persisted",
			zap.String("token_id", trade.TokenID),
			zap.Int64("block", trade.Block),
			zap.Error(err))
		return nil
	}
	if r.metrics != nil {
		r.metrics.PricePointsStored.Inc()
	}
	return nil
}

func (r *Recorder) handleGraduation(ctx context.Context, ev events.Event) error {
	e, ok := ev.(*events.TokenGraduatedEvent)
	if !ok || e.Graduation == nil {
		return nil
	}
	grad := e.Graduation

	if err := r.insertWithRetry(ctx, "graduations", func(ctx context.Context) error {
		return r.graduations.Insert(ctx, grad)
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			r.logger.Debug("graduation already persisted", zap.String("token_id", grad.TokenID))
			return nil
		}
		r.logger.Error("graduation not persisted, ledger and storage have diverged",
			zap.String("token_id", grad.TokenID),
			zap.Error(err))
		return err
	}
	return nil
}

// insertWithRetry runs a write under exponential backoff. Duplicate and
// invalid-input errors do not retry.
func (r *Recorder) insertWithRetry(ctx context.Context, sink string, write func(context.Context) error) error {
	start := time.Now()
	op := func() (struct{}, error) {
		err := write(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, storage.ErrDuplicateKey) || errors.Is(err, storage.ErrInvalidInput) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(r.maxElapsed),
	)
	if r.metrics != nil {
		r.metrics.SinkWriteLatency.WithLabelValues(sink).Observe(time.Since(start).Seconds())
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			r.metrics.SinkErrors.WithLabelValues(sink).Inc()
		}
	}
	return err
}

var floatScale = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// toFloat converts a 1e18-scaled integer to its float value.
func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), floatScale).Float64()
	return f
}

// pricePointFromTrade derives the informational timeseries point for a
// trade. Volume is the gross ETH notional regardless of side.
func pricePointFromTrade(t *domain.TradeRecord) *domain.PricePoint {
	notional := new(big.Int)
	if t.Side == domain.SideBuy {
		notional.Set(t.AmountIn)
	} else {
		notional.Add(t.AmountOut, t.CreatorFee)
		notional.Add(notional, t.PlatformFee)
	}
	return &domain.PricePoint{
		TokenID:     t.TokenID,
		Block:       t.Block,
		TimestampMs: t.TimestampMs,
		Price:       toFloat(t.Price),
		Volume:      toFloat(notional),
	}
}
