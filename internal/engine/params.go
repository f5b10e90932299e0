package engine

import (
	"fmt"
	"math/big"
)

// Fee basis points. The total trade fee is TotalFeeBps of the gross
// notional, of which CreatorFeeBps accrues to the token creator and the
// remainder to the platform.
const (
	TotalFeeBps   = 300
	CreatorFeeBps = 100
	bpsDenom      = 10_000
)

// Params holds the launch configuration shared by every token the
// engine lists. Reserve and threshold values are 1e18-scaled integers.
type Params struct {
	// VirtualEthSeed and VirtualTokenSeed are the virtual reserves a
	// token starts with. They set the opening price.
	VirtualEthSeed   *big.Int
	VirtualTokenSeed *big.Int

	// TotalSupply is the fixed token supply minted to the curve.
	TotalSupply *big.Int

	// GraduationThresholdUSD is the 1e18-scaled market cap at which a
	// token graduates off the curve.
	GraduationThresholdUSD *big.Int

	// Operator may pause and unpause the engine.
	Operator string

	// PlatformRecipient may sweep accrued platform fees.
	PlatformRecipient string
}

// DefaultParams returns the stock launch configuration: a 1 ETH /
// 1,000,000 token virtual seed, a 1,000,000 token supply, and a
// $69,000 graduation threshold.
func DefaultParams(operator, platformRecipient string) Params {
	return Params{
		VirtualEthSeed:         new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
		VirtualTokenSeed:       new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil),
		TotalSupply:            new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil),
		GraduationThresholdUSD: new(big.Int).Mul(big.NewInt(69_000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		Operator:               operator,
		PlatformRecipient:      platformRecipient,
	}
}

// Validate checks that every parameter is present and positive.
func (p Params) Validate() error {
	for name, v := range map[string]*big.Int{
		"virtual eth seed":     p.VirtualEthSeed,
		"virtual token seed":   p.VirtualTokenSeed,
		"total supply":         p.TotalSupply,
		"graduation threshold": p.GraduationThresholdUSD,
	} {
		if v == nil || v.Sign() <= 0 {
			return fmt.Errorf("params: %s must be positive", name)
		}
	}
	if p.Operator == "" {
		return fmt.Errorf("params: operator must be set")
	}
	if p.PlatformRecipient == "" {
		return fmt.Errorf("params: platform recipient must be set")
	}
	return nil
}
