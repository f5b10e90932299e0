// Package curve implements the constant-product pricing math for the
// bonding curve. All functions are pure and deterministic: they take
// reserve values as inputs and never touch engine state.
package curve

import (
	"errors"
	"math/big"
)

// Scale is the fixed-point scale for prices and USD rates (1e18).
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// scaleSquared = Scale * Scale, precomputed for MarketCap.
var scaleSquared = new(big.Int).Mul(Scale, Scale)

// Every quote applies a fixed 0.1% haircut to the raw constant-product
// output: out = raw * 999 / 1000, floored.
const (
	haircutNumerator   = 999
	haircutDenominator = 1000
)

// Curve math errors.
var (
	// ErrDivisionByZero is returned for a degenerate reserve state.
	// Virtual reserves never reach zero by construction, so hitting this
	// means a caller bypassed the engine's bookkeeping.
	ErrDivisionByZero = errors.New("curve: zero reserve")

	// ErrNonPositiveAmount is returned for nil, zero or negative inputs.
	ErrNonPositiveAmount = errors.New("curve: amount must be positive")
)

// TokensOut quotes the token output for an ETH input against the given
// reserves. No fee is deducted from ethIn here; the fee split is applied
// separately on the real-reserve side by the trade executor.
func TokensOut(ethReserve, tokenReserve, ethIn *big.Int) (*big.Int, error) {
	if err := checkReserves(ethReserve, tokenReserve); err != nil {
		return nil, err
	}
	if ethIn == nil || ethIn.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}

	// k = e*t; newT = floor(k / (e + in)); raw = t - newT.
	k := new(big.Int).Mul(ethReserve, tokenReserve)
	newEthReserve := new(big.Int).Add(ethReserve, ethIn)
	newTokenReserve := new(big.Int).Quo(k, newEthReserve)
	raw := new(big.Int).Sub(tokenReserve, newTokenReserve)

	return applyHaircut(raw), nil
}

// EthOut quotes the ETH output for a token input against the given
// reserves, symmetric to TokensOut.
func EthOut(ethReserve, tokenReserve, tokensIn *big.Int) (*big.Int, error) {
	if err := checkReserves(ethReserve, tokenReserve); err != nil {
		return nil, err
	}
	if tokensIn == nil || tokensIn.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}

	k := new(big.Int).Mul(ethReserve, tokenReserve)
	newTokenReserve := new(big.Int).Add(tokenReserve, tokensIn)
	newEthReserve := new(big.Int).Quo(k, newTokenReserve)
	raw := new(big.Int).Sub(ethReserve, newEthReserve)

	return applyHaircut(raw), nil
}

// CurrentPrice derives the spot price from reserves: e * Scale / t,
// 1e18-scaled ETH per whole token. Always computed from virtual reserves.
func CurrentPrice(ethReserve, tokenReserve *big.Int) (*big.Int, error) {
	if err := checkReserves(ethReserve, tokenReserve); err != nil {
		return nil, err
	}
	price := new(big.Int).Mul(ethReserve, Scale)
	return price.Quo(price, tokenReserve), nil
}

// MarketCap derives the USD market cap from a 1e18-scaled price, a raw
// total supply and a 1e18-scaled USD-per-ETH rate. The result is
// 1e18-scaled USD. Informational only: never fed back into trade math.
func MarketCap(price, totalSupply, ethUsdRate *big.Int) *big.Int {
	mc := new(big.Int).Mul(price, totalSupply)
	mc.Mul(mc, ethUsdRate)
	return mc.Quo(mc, scaleSquared)
}

// applyHaircut floors raw * 999 / 1000.
func applyHaircut(raw *big.Int) *big.Int {
	out := new(big.Int).Mul(raw, big.NewInt(haircutNumerator))
	return out.Quo(out, big.NewInt(haircutDenominator))
}

func checkReserves(ethReserve, tokenReserve *big.Int) error {
	if ethReserve == nil || tokenReserve == nil || ethReserve.Sign() == 0 || tokenReserve.Sign() == 0 {
		return ErrDivisionByZero
	}
	if ethReserve.Sign() < 0 || tokenReserve.Sign() < 0 {
		return ErrNonPositiveAmount
	}
	return nil
}
