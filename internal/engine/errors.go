package engine

import "errors"

// Engine errors. Every rejection is a typed failure raised before any
// state mutation: callers always observe either a fully applied
// operation or an unchanged token state.
var (
	// ErrNotInitialized is returned for operations on an unknown token.
	ErrNotInitialized = errors.New("token not initialized")

	// ErrAlreadyInitialized is returned when a token is listed twice.
	ErrAlreadyInitialized = errors.New("token already initialized")

	// ErrPaused is returned for mutating calls while the engine is paused.
	ErrPaused = errors.New("engine is paused")

	// ErrGraduated is returned for trades on a graduated token.
	ErrGraduated = errors.New("token has graduated")

	// ErrTradingNotEnabled is returned for trades before the token's
	// enablement block.
	ErrTradingNotEnabled = errors.New("trading not enabled yet")

	// ErrZeroAmount is returned for zero-value trade inputs.
	ErrZeroAmount = errors.New("amount must be nonzero")

	// ErrSameBlockTrade is returned when a token already traded in the
	// submitted block. At most one trade per token per block, regardless
	// of trader identity.
	ErrSameBlockTrade = errors.New("token already traded in this block")

	// ErrSlippageExceeded is returned when the quoted output is worse
	// than the caller's minimum.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrInsufficientLiquidity is returned when a trade would push a
	// reserve negative or past the total supply.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrNotCreator is returned when a creator-fee claim comes from
	// anyone but the token's creator.
	ErrNotCreator = errors.New("caller is not the token creator")

	// ErrNotRecipient is returned when a platform-fee claim comes from
	// anyone but the configured recipient.
	ErrNotRecipient = errors.New("caller is not the platform fee recipient")

	// ErrNothingToClaim is returned for a zero-balance claim.
	ErrNothingToClaim = errors.New("nothing to claim")

	// ErrUnauthorized is returned for pause/unpause by a non-operator.
	ErrUnauthorized = errors.New("caller is not the operator")
)
