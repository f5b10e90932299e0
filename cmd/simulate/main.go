// Package main runs a deterministic trading simulation against an
// in-memory engine and prints a summary. Useful for eyeballing fee
// accrual, price paths and graduation behavior without a deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"launch-curve/internal/engine"
	"launch-curve/internal/events"
	"launch-curve/internal/recorder"
	"launch-curve/internal/storage/memory"
)

func main() {
	seed := flag.Int64("seed", 1, "Random seed for the trade script")
	blocks := flag.Int64("blocks", 500, "Number of blocks to simulate")
	tokens := flag.Int("tokens", 3, "Number of tokens to list")
	traders := flag.Int("traders", 8, "Number of trading accounts")
	maxBuyMilli := flag.Int64("max-buy-milli", 500, "Largest buy in thousandths of an ETH")
	rateUSD := flag.Int64("rate-usd", 3000, "ETH/USD valuation rate in whole dollars")
	verbose := flag.Bool("verbose", false, "Log every trade")

	flag.Parse()

	if err := run(*seed, *blocks, *tokens, *traders, *maxBuyMilli, *rateUSD, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(seed, blocks int64, tokens, traders int, maxBuyMilli, rateUSD int64, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	trades := memory.NewTradeStore()
	grads := memory.NewGraduationStore()
	prices := memory.NewPricePointStore()

	bus := events.NewBus(logger, 1024)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bus.Shutdown(ctx)
	}()

	rec := recorder.New(trades, grads, prices, logger)
	rec.Attach(bus)

	rate := new(big.Int).Mul(big.NewInt(rateUSD), exp10(18))
	params := engine.DefaultParams("sim-operator", "sim-platform")

	eng, err := engine.New(params, engine.NewFixedRateSource(rate), bus, logger)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))

	tokenIDs := make([]string, tokens)
	for i := range tokenIDs {
		tokenIDs[i] = syntheticAddress(rng)
		creator := fmt.Sprintf("creator-%d", i)
		if _, err := eng.InitializeToken(tokenIDs[i], creator, 0); err != nil {
			return fmt.Errorf("initialize %s: %w", tokenIDs[i], err)
		}
	}

	milli := exp10(15)
	var executed, rejected int
	holdings := make(map[string]*big.Int) // token -> tokens bought so far

	for block := int64(1); block <= blocks; block++ {
		token := tokenIDs[rng.Intn(len(tokenIDs))]
		trader := fmt.Sprintf("trader-%d", rng.Intn(traders))

		var tradeErr error
		if held := holdings[token]; held != nil && held.Sign() > 0 && rng.Intn(3) == 0 {
			// Sell back a random fraction of what the fleet holds.
			portion := new(big.Int).Div(held, big.NewInt(int64(rng.Intn(4)+2)))
			if portion.Sign() == 0 {
				continue
			}
			trade, err := eng.Sell(trader, token, portion, nil, block)
			tradeErr = err
			if err == nil {
				held.Sub(held, trade.AmountIn)
			}
		} else {
			amount := new(big.Int).Mul(big.NewInt(rng.Int63n(maxBuyMilli)+1), milli)
			trade, err := eng.Buy(trader, token, amount, nil, block)
			tradeErr = err
			if err == nil {
				if holdings[token] == nil {
					holdings[token] = new(big.Int)
				}
				holdings[token].Add(holdings[token], trade.AmountOut)
			}
		}

		if tradeErr == nil {
			executed++
		} else {
			rejected++
		}
	}

	// Let async persistence drain before reading the stores.
	deadline := time.Now().Add(5 * time.Second)
	for bus.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("simulated %d blocks: %d trades executed, %d rejected\n\n", blocks, executed, rejected)

	ctx := context.Background()
	for _, tokenID := range tokenIDs {
		info, err := eng.GetTokenInfo(tokenID)
		if err != nil {
			return err
		}
		stored, err := trades.GetByTokenID(ctx, tokenID)
		if err != nil {
			return err
		}
		price, err := eng.GetCurrentPrice(tokenID)
		if err != nil {
			return err
		}
		mc, err := eng.GetMarketCap(tokenID)
		if err != nil {
			return err
		}

		fmt.Printf("token %s\n", tokenID)
		fmt.Printf("  trades persisted:  %d\n", len(stored))
		fmt.Printf("  price:             %s\n", formatScaled(price))
		fmt.Printf("  market cap (USD):  %s\n", formatScaled(mc))
		fmt.Printf("  real eth reserve:  %s\n", formatScaled(info.RealEthReserve))
		fmt.Printf("  creator fees:      %s\n", formatScaled(info.CreatorFees))
		fmt.Printf("  platform fees:     %s\n", formatScaled(info.PlatformFees))
		fmt.Printf("  volume traded:     %s\n", formatScaled(info.TotalVolumeTraded))
		fmt.Printf("  graduated:         %v\n\n", info.Graduated)
	}

	graduations, err := grads.List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("graduations recorded: %d\n", len(graduations))
	for _, g := range graduations {
		fmt.Printf("  %s at block %d, market cap %s USD\n", g.TokenID, g.Block, formatScaled(g.MarketCapUSD))
	}
	return nil
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// syntheticAddress derives a deterministic valid address from the rng
// by scalar-multiplying the ed25519 base point.
func syntheticAddress(rng *rand.Rand) string {
	seed := make([]byte, 32)
	rng.Read(seed)

	scalar, err := edwards25519.NewScalar().SetBytesWithClamping(seed)
	if err != nil {
		panic(err)
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return base58.Encode(point.Bytes())
}

// formatScaled renders a 1e18-scaled integer as a decimal with six
// fractional digits.
func formatScaled(v *big.Int) string {
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(v, exp10(18), frac)
	micro := new(big.Int).Quo(frac, exp10(12))
	return fmt.Sprintf("%s.%06d", whole.String(), micro.Int64())
}
