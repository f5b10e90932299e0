package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// GraduationStore implements storage.GraduationStore using PostgreSQL.
type GraduationStore struct {
	pool *Pool
}

// NewGraduationStore creates a new GraduationStore.
func NewGraduationStore(pool *Pool) *GraduationStore {
	return &GraduationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GraduationStore = (*GraduationStore)(nil)

// Insert adds a graduation record. Returns ErrDuplicateKey if token_id exists.
func (s *GraduationStore) Insert(ctx context.Context, g *domain.GraduationRecord) error {
	if g == nil || g.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO graduations (
			token_id, triggering_trade_id, market_cap_usd, block, timestamp_ms
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		g.TokenID, g.TriggeringTradeID, g.MarketCapUSD.String(), g.Block, g.TimestampMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert graduation: %w", err)
	}
	return nil
}

// GetByTokenID retrieves a token's graduation. Returns ErrNotFound if not exists.
func (s *GraduationStore) GetByTokenID(ctx context.Context, tokenID string) (*domain.GraduationRecord, error) {
	query := `
		SELECT token_id, triggering_trade_id, market_cap_usd::text, block, timestamp_ms
		FROM graduations
		WHERE token_id = $1
	`

	g, err := scanGraduation(s.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get graduation by token id: %w", err)
	}
	return g, nil
}

// List retrieves all graduations, ordered by block ASC.
func (s *GraduationStore) List(ctx context.Context) ([]*domain.GraduationRecord, error) {
	query := `
		SELECT token_id, triggering_trade_id, market_cap_usd::text, block, timestamp_ms
		FROM graduations
		ORDER BY block ASC, token_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list graduations: %w", err)
	}
	defer rows.Close()

	var result []*domain.GraduationRecord
	for rows.Next() {
		g, err := scanGraduation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan graduation: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graduations: %w", err)
	}
	return result, nil
}

func scanGraduation(row pgx.Row) (*domain.GraduationRecord, error) {
	var g domain.GraduationRecord
	var marketCap string

	if err := row.Scan(&g.TokenID, &g.TriggeringTradeID, &marketCap, &g.Block, &g.TimestampMs); err != nil {
		return nil, err
	}

	var err error
	if g.MarketCapUSD, err = parseBig(marketCap); err != nil {
		return nil, err
	}
	return &g, nil
}
