package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

func testTrade(tradeID, tokenID string, block int64) *domain.TradeRecord {
	return &domain.TradeRecord{
		TradeID:             tradeID,
		TokenID:             tokenID,
		Trader:              "trader1",
		Side:                domain.SideBuy,
		AmountIn:            big.NewInt(1_000_000),
		AmountOut:           big.NewInt(990_000),
		CreatorFee:          big.NewInt(10_000),
		PlatformFee:         big.NewInt(20_000),
		Price:               big.NewInt(1_000_000_000_000),
		VirtualEthReserve:   big.NewInt(2_000_000),
		VirtualTokenReserve: big.NewInt(500_000),
		Block:               block,
		TimestampMs:         1_700_000_000_000 + block,
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := testTrade("t1", "tok1", 100)
	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AmountIn.Cmp(trade.AmountIn) != 0 {
		t.Errorf("AmountIn mismatch: got %s, want %s", got.AmountIn, trade.AmountIn)
	}
	if got.Block != 100 {
		t.Errorf("Block mismatch: got %d, want 100", got.Block)
	}
}

func TestTradeStore_DuplicateKey(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testTrade("t1", "tok1", 100)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, testTrade("t1", "tok1", 101)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_NotFound(t *testing.T) {
	store := NewTradeStore()
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTradeStore_GetByTokenIDOrdered(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.TradeRecord{
		testTrade("t3", "tok1", 300),
		testTrade("t1", "tok1", 100),
		testTrade("t2", "tok1", 200),
		testTrade("x1", "tok2", 50),
	} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(result))
	}
	for i, want := range []int64{100, 200, 300} {
		if result[i].Block != want {
			t.Errorf("trade[%d].Block = %d, want %d", i, result[i].Block, want)
		}
	}
}

func TestTradeStore_GetByBlockRange(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.TradeRecord{
		testTrade("t1", "tok1", 100),
		testTrade("t2", "tok1", 200),
		testTrade("t3", "tok1", 300),
	} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByBlockRange(ctx, "tok1", 100, 200)
	if err != nil {
		t.Fatalf("GetByBlockRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 trades in [100, 200], got %d", len(result))
	}
}

func TestTradeStore_CopyOnInsert(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := testTrade("t1", "tok1", 100)
	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	trade.AmountIn.SetInt64(0)

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AmountIn.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Errorf("Stored AmountIn mutated: got %s", got.AmountIn)
	}
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.TradeRecord{TokenID: "tok1"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty trade ID, got %v", err)
	}
}
