package storage

import (
	"context"

	"launch-curve/internal/domain"
)

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByTokenID retrieves all trades for a token, ordered by block ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.TradeRecord, error)

	// GetByBlockRange retrieves trades for a token within [start, end] (inclusive).
	GetByBlockRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.TradeRecord, error)
}

// GraduationStore provides access to graduations storage.
type GraduationStore interface {
	// Insert adds a graduation record. Returns ErrDuplicateKey if token_id exists.
	Insert(ctx context.Context, g *domain.GraduationRecord) error

	// GetByTokenID retrieves a token's graduation. Returns ErrNotFound if not exists.
	GetByTokenID(ctx context.Context, tokenID string) (*domain.GraduationRecord, error)

	// List retrieves all graduations, ordered by block ASC.
	List(ctx context.Context) ([]*domain.GraduationRecord, error)
}

// PricePointStore provides access to price_timeseries storage.
type PricePointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (token_id, block).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByTokenID retrieves all points for a token, ordered by block ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PricePoint, error)

	// GetByTimeRange retrieves points for a token within [start, end] ms (inclusive).
	GetByTimeRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.PricePoint, error)
}
