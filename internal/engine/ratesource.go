package engine

import "math/big"

// RateSource supplies the ETH/USD conversion rate used for market cap
// valuation. Rates are 1e18-scaled USD per ETH.
type RateSource interface {
	EthUsdRate() *big.Int
}

// FixedRateSource returns a constant rate. Used by the simulator and
// by deployments that pin valuation to a configured rate.
type FixedRateSource struct {
	rate *big.Int
}

// NewFixedRateSource returns a source that always reports rate.
func NewFixedRateSource(rate *big.Int) *FixedRateSource {
	return &FixedRateSource{rate: new(big.Int).Set(rate)}
}

func (s *FixedRateSource) EthUsdRate() *big.Int {
	return new(big.Int).Set(s.rate)
}

var _ RateSource = (*FixedRateSource)(nil)
