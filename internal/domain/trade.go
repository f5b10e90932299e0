package domain

import "math/big"

// TokenInfo is a consistent point-in-time snapshot of a token's curve state.
// All big.Int fields are owned by the snapshot and safe to retain.
type TokenInfo struct {
	TokenID string
	Creator string

	// Virtual reserves seed and drive the constant-product pricing formula.
	VirtualEthReserve   *big.Int
	VirtualTokenReserve *big.Int

	// Real reserves are actually accumulated balances, net of fees.
	RealEthReserve   *big.Int
	RealTokenReserve *big.Int

	// Accrued, claimable fee balances.
	CreatorFees  *big.Int
	PlatformFees *big.Int

	// TotalVolumeTraded is the cumulative ETH-equivalent notional of all trades.
	TotalVolumeTraded *big.Int

	// TradingEnabledAt is the first block (inclusive) at which trades are accepted.
	TradingEnabledAt int64

	// LastTradeBlock is the block of the most recent trade, -1 if none.
	LastTradeBlock int64

	Graduated bool
}

// Quote is the result of a read-only price quote. AmountOut is what the
// trader would be credited: the 0.1% haircut is applied, and on sells
// the protocol fee is already deducted.
type Quote struct {
	TokenID   string
	Side      string
	AmountIn  *big.Int
	AmountOut *big.Int
	// Price is the spot price implied by the current virtual reserves,
	// 1e18-scaled ETH per whole token.
	Price *big.Int
}

// TradeRecord is the per-trade result record emitted for indexers and
// notifiers after a trade commits.
type TradeRecord struct {
	TradeID string
	TokenID string
	Trader  string
	Side    string

	AmountIn  *big.Int
	AmountOut *big.Int

	CreatorFee  *big.Int
	PlatformFee *big.Int

	// Price and reserves after the trade committed.
	Price               *big.Int
	VirtualEthReserve   *big.Int
	VirtualTokenReserve *big.Int

	Block       int64
	TimestampMs int64
}

// Fee claim kinds.
const (
	ClaimKindCreator  = "creator"
	ClaimKindPlatform = "platform"
)

// FeeClaim is the result of a successful fee claim. The claimed ledger
// entry is zeroed atomically with the claim.
type FeeClaim struct {
	ClaimID  string
	Kind     string
	Claimant string
	// TokenID is empty for platform claims, which sweep every token.
	TokenID     string
	Amount      *big.Int
	TimestampMs int64
}

// GraduationRecord marks a token's one-way transition out of curve trading.
type GraduationRecord struct {
	TokenID string
	// TriggeringTradeID references the buy that pushed market cap over
	// the threshold.
	TriggeringTradeID string
	// MarketCapUSD is the 1e18-scaled USD market cap at graduation.
	MarketCapUSD *big.Int
	Block        int64
	TimestampMs  int64
}

// PricePoint is a per-trade price observation for the timeseries sink.
// Values are float64: the timeseries is informational, never fed back
// into trade math.
type PricePoint struct {
	TokenID     string
	Block       int64
	TimestampMs int64
	Price       float64
	Volume      float64
}
