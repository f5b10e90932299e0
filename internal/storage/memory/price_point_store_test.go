package memory

import (
	"context"
	"errors"
	"testing"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

func testPoint(tokenID string, block, ts int64) *domain.PricePoint {
	return &domain.PricePoint{
		TokenID:     tokenID,
		Block:       block,
		TimestampMs: ts,
		Price:       0.000001,
		Volume:      1.5,
	}
}

func TestPricePointStore_InsertBulkAndGet(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	points := []*domain.PricePoint{
		testPoint("tok1", 2, 2000),
		testPoint("tok1", 1, 1000),
		testPoint("tok2", 1, 1000),
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(result))
	}
	if result[0].Block != 1 || result[1].Block != 2 {
		t.Errorf("Points not ordered by block: %d, %d", result[0].Block, result[1].Block)
	}
}

func TestPricePointStore_DuplicateInBatch(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	points := []*domain.PricePoint{
		testPoint("tok1", 1, 1000),
		testPoint("tok1", 1, 2000),
	}
	if err := store.InsertBulk(ctx, points); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Failed batch must not be partially applied.
	result, err := store.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected empty store after failed batch, got %d points", len(result))
	}
}

func TestPricePointStore_DuplicateAcrossBatches(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PricePoint{testPoint("tok1", 1, 1000)}); err != nil {
		t.Fatalf("First batch failed: %v", err)
	}
	if err := store.InsertBulk(ctx, []*domain.PricePoint{testPoint("tok1", 1, 9999)}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPricePointStore_GetByTimeRange(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PricePoint{
		testPoint("tok1", 1, 1000),
		testPoint("tok1", 2, 2000),
		testPoint("tok1", 3, 3000),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, "tok1", 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 points in [1000, 2000], got %d", len(result))
	}
}

func TestPricePointStore_EmptyBatch(t *testing.T) {
	store := NewPricePointStore()
	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("Empty batch should be a no-op, got %v", err)
	}
}
