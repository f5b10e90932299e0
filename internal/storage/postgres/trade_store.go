package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launch-curve/internal/domain"
	"launch-curve/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, token_id, trader, side,
	amount_in::text, amount_out::text,
	creator_fee::text, platform_fee::text,
	price::text, virtual_eth_reserve::text, virtual_token_reserve::text,
	block, timestamp_ms
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			trade_id, token_id, trader, side,
			amount_in, amount_out, creator_fee, platform_fee,
			price, virtual_eth_reserve, virtual_token_reserve,
			block, timestamp_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.TokenID, t.Trader, t.Side,
		t.AmountIn.String(), t.AmountOut.String(),
		t.CreatorFee.String(), t.PlatformFee.String(),
		t.Price.String(), t.VirtualEthReserve.String(), t.VirtualTokenReserve.String(),
		t.Block, t.TimestampMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	trade, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return trade, nil
}

// GetByTokenID retrieves all trades for a token, ordered by block ASC.
func (s *TradeStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE token_id = $1 ORDER BY block ASC, timestamp_ms ASC`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get trades by token id: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByBlockRange retrieves trades for a token within [start, end] (inclusive).
func (s *TradeStore) GetByBlockRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades
		WHERE token_id = $1 AND block >= $2 AND block <= $3
		ORDER BY block ASC, timestamp_ms ASC`

	rows, err := s.pool.Query(ctx, query, tokenID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trades by block range: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var amountIn, amountOut, creatorFee, platformFee, price, vEth, vToken string

	err := row.Scan(
		&t.TradeID, &t.TokenID, &t.Trader, &t.Side,
		&amountIn, &amountOut, &creatorFee, &platformFee,
		&price, &vEth, &vToken,
		&t.Block, &t.TimestampMs,
	)
	if err != nil {
		return nil, err
	}

	if t.AmountIn, err = parseBig(amountIn); err != nil {
		return nil, err
	}
	if t.AmountOut, err = parseBig(amountOut); err != nil {
		return nil, err
	}
	if t.CreatorFee, err = parseBig(creatorFee); err != nil {
		return nil, err
	}
	if t.PlatformFee, err = parseBig(platformFee); err != nil {
		return nil, err
	}
	if t.Price, err = parseBig(price); err != nil {
		return nil, err
	}
	if t.VirtualEthReserve, err = parseBig(vEth); err != nil {
		return nil, err
	}
	if t.VirtualTokenReserve, err = parseBig(vToken); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrades(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var result []*domain.TradeRecord
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		result = append(result, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return result, nil
}
