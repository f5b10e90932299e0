package recorder

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"go.uber.org/zap"

	"launch-curve/internal/domain"
	"launch-curve/internal/events"
	"launch-curve/internal/storage/memory"
)

func scaled(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func buyTrade(tradeID string, block int64) *domain.TradeRecord {
	return &domain.TradeRecord{
		TradeID:             tradeID,
		TokenID:             "tok1",
		Trader:              "trader1",
		Side:                domain.SideBuy,
		AmountIn:            scaled(1),
		AmountOut:           scaled(495_000),
		CreatorFee:          big.NewInt(10_000_000_000_000_000),
		PlatformFee:         big.NewInt(20_000_000_000_000_000),
		Price:               big.NewInt(4_000_000_000_000),
		VirtualEthReserve:   scaled(2),
		VirtualTokenReserve: scaled(500_000),
		Block:               block,
		TimestampMs:         1_700_000_000_000,
	}
}

func newTestRecorder(t *testing.T) (*Recorder, *memory.TradeStore, *memory.GraduationStore, *memory.PricePointStore, *events.Bus) {
	t.Helper()
	trades := memory.NewTradeStore()
	grads := memory.NewGraduationStore()
	prices := memory.NewPricePointStore()
	rec := New(trades, grads, prices, zap.NewNop(), WithMaxElapsedTime(100*time.Millisecond))

	bus := events.NewBus(zap.NewNop(), 16)
	rec.Attach(bus)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return rec, trades, grads, prices, bus
}

func TestRecorder_PersistsTrade(t *testing.T) {
	_, trades, _, prices, bus := newTestRecorder(t)
	ctx := context.Background()

	trade := buyTrade("t1", 100)
	err := bus.PublishSync(ctx, &events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: time.Now()},
		Trade:     trade,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	got, err := trades.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("trade not persisted: %v", err)
	}
	if got.AmountIn.Cmp(trade.AmountIn) != 0 {
		t.Errorf("AmountIn = %s, want %s", got.AmountIn, trade.AmountIn)
	}

	points, err := prices.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("price points = %d, want 1", len(points))
	}
	if math.Abs(points[0].Price-0.000004) > 1e-12 {
		t.Errorf("price = %g, want 0.000004", points[0].Price)
	}
	if math.Abs(points[0].Volume-1.0) > 1e-9 {
		t.Errorf("volume = %g, want 1.0", points[0].Volume)
	}
}

func TestRecorder_SellVolumeIsGrossNotional(t *testing.T) {
	trade := buyTrade("t1", 100)
	trade.Side = domain.SideSell
	trade.AmountIn = scaled(100_000)               // tokens in
	trade.AmountOut = scaled(1)                    // net eth out
	trade.CreatorFee = big.NewInt(1e16)            // 0.01
	trade.PlatformFee = big.NewInt(2e16)           // 0.02

	point := pricePointFromTrade(trade)
	if math.Abs(point.Volume-1.03) > 1e-9 {
		t.Errorf("volume = %g, want 1.03", point.Volume)
	}
}

func TestRecorder_DuplicateTradeTolerated(t *testing.T) {
	_, trades, _, _, bus := newTestRecorder(t)
	ctx := context.Background()

	trade := buyTrade("t1", 100)
	ev := &events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: time.Now()},
		Trade:     trade,
	}
	if err := bus.PublishSync(ctx, ev); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	// Replaying the same event must not error or duplicate.
	if err := bus.PublishSync(ctx, ev); err != nil {
		t.Fatalf("replayed publish: %v", err)
	}

	all, err := trades.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("trades stored = %d, want 1", len(all))
	}
}

func TestRecorder_PersistsGraduation(t *testing.T) {
	_, _, grads, _, bus := newTestRecorder(t)
	ctx := context.Background()

	grad := &domain.GraduationRecord{
		TokenID:           "tok1",
		TriggeringTradeID: "t9",
		MarketCapUSD:      scaled(69_000),
		Block:             900,
		TimestampMs:       1_700_000_000_000,
	}
	err := bus.PublishSync(ctx, &events.TokenGraduatedEvent{
		BaseEvent:  events.BaseEvent{EventType: events.TokenGraduated, EventTime: time.Now()},
		Graduation: grad,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	got, err := grads.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("graduation not persisted: %v", err)
	}
	if got.TriggeringTradeID != "t9" {
		t.Errorf("TriggeringTradeID = %q, want t9", got.TriggeringTradeID)
	}
}

func TestRecorder_NilPriceStore(t *testing.T) {
	trades := memory.NewTradeStore()
	grads := memory.NewGraduationStore()
	rec := New(trades, grads, nil, zap.NewNop())

	err := rec.handleTrade(context.Background(), &events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: time.Now()},
		Trade:     buyTrade("t1", 100),
	})
	if err != nil {
		t.Fatalf("handleTrade without price store: %v", err)
	}
}
