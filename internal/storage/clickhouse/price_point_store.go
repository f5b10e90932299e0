package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (token_id, block).
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	// MergeTree does not enforce uniqueness at insert time, so
	// duplicates are rejected up front: first within the batch, then
	// against existing rows.
	type key struct {
		tokenID string
		block   int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.TokenID, p.Block}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	for _, p := range points {
		exists, err := s.exists(ctx, p.TokenID, p.Block)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_timeseries (token_id, block, timestamp_ms, price, volume)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, p := range points {
		if err := batch.Append(p.TokenID, p.Block, p.TimestampMs, p.Price, p.Volume); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTokenID retrieves all points for a token, ordered by block ASC.
func (s *PricePointStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PricePoint, error) {
	query := `
		SELECT token_id, block, timestamp_ms, price, volume
		FROM price_timeseries
		WHERE token_id = ?
		ORDER BY block ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token id: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByTimeRange retrieves points for a token within [start, end] ms (inclusive).
func (s *PricePointStore) GetByTimeRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.PricePoint, error) {
	query := `
		SELECT token_id, block, timestamp_ms, price, volume
		FROM price_timeseries
		WHERE token_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY block ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

func (s *PricePointStore) exists(ctx context.Context, tokenID string, block int64) (bool, error) {
	query := `SELECT count() FROM price_timeseries WHERE token_id = ? AND block = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, tokenID, block).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPricePoints(rows driver.Rows) ([]*domain.PricePoint, error) {
	var result []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.TokenID, &p.Block, &p.TimestampMs, &p.Price, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}
	return result, nil
}
