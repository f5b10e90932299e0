package postgres

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad big int literal: %s", s)
	return v
}

func testTrade(t *testing.T, tradeID, tokenID string, block int64) *domain.TradeRecord {
	t.Helper()
	return &domain.TradeRecord{
		TradeID: tradeID,
		TokenID: tokenID,
		Trader:  "trader1",
		Side:    domain.SideBuy,
		// 1e18-scale values exceed int64 on purpose.
		AmountIn:            bigFromString(t, "10000000000000000"),
		AmountOut:           bigFromString(t, "9891089108910891089108"),
		CreatorFee:          bigFromString(t, "100000000000000"),
		PlatformFee:         bigFromString(t, "200000000000000"),
		Price:               bigFromString(t, "1020100000000"),
		VirtualEthReserve:   bigFromString(t, "1010000000000000000"),
		VirtualTokenReserve: bigFromString(t, "990108910891089108910892"),
		Block:               block,
		TimestampMs:         1_700_000_000_000 + block,
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	trade := testTrade(t, "t1", "tok1", 100)
	require.NoError(t, store.Insert(ctx, trade))

	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 0, got.AmountIn.Cmp(trade.AmountIn), "AmountIn round-trip")
	require.Equal(t, 0, got.AmountOut.Cmp(trade.AmountOut), "AmountOut round-trip")
	require.Equal(t, 0, got.VirtualTokenReserve.Cmp(trade.VirtualTokenReserve), "reserve round-trip")
	require.Equal(t, trade.Block, got.Block)
	require.Equal(t, domain.SideBuy, got.Side)
}

func TestTradeStore_DuplicateTradeID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade(t, "t1", "tok1", 100)))
	err := store.Insert(ctx, testTrade(t, "t1", "tok1", 101))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTradeStore_DuplicateTokenBlock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade(t, "t1", "tok1", 100)))
	// The schema enforces one trade per token per block.
	err := store.Insert(ctx, testTrade(t, "t2", "tok1", 100))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTradeStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeStore_GetByTokenIDOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade(t, "t3", "tok1", 300)))
	require.NoError(t, store.Insert(ctx, testTrade(t, "t1", "tok1", 100)))
	require.NoError(t, store.Insert(ctx, testTrade(t, "t2", "tok1", 200)))
	require.NoError(t, store.Insert(ctx, testTrade(t, "x1", "tok2", 50)))

	result, err := store.GetByTokenID(ctx, "tok1")
	require.NoError(t, err)
	require.Len(t, result, 3)
	require.Equal(t, int64(100), result[0].Block)
	require.Equal(t, int64(200), result[1].Block)
	require.Equal(t, int64(300), result[2].Block)
}

func TestTradeStore_GetByBlockRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade(t, "t1", "tok1", 100)))
	require.NoError(t, store.Insert(ctx, testTrade(t, "t2", "tok1", 200)))
	require.NoError(t, store.Insert(ctx, testTrade(t, "t3", "tok1", 300)))

	result, err := store.GetByBlockRange(ctx, "tok1", 100, 200)
	require.NoError(t, err)
	require.Len(t, result, 2)
}
