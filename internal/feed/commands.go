package feed

import (
	"fmt"
	"math/big"

	"launch-curve/internal/domain"
)

// CommandTarget is the engine surface the feed dispatches commands to.
type CommandTarget interface {
	InitializeToken(tokenID, creator string, tradingEnabledAt int64) (*domain.TokenInfo, error)
	Buy(trader, tokenID string, ethIn, minTokensOut *big.Int, block int64) (*domain.TradeRecord, error)
	Sell(trader, tokenID string, tokensIn, minEthOut *big.Int, block int64) (*domain.TradeRecord, error)
	QuoteBuy(tokenID string, ethIn *big.Int) (*domain.Quote, error)
	QuoteSell(tokenID string, tokensIn *big.Int) (*domain.Quote, error)
	ClaimCreatorFees(caller, tokenID string) (*domain.FeeClaim, error)
	ClaimPlatformFees(caller string) (*domain.FeeClaim, error)
	Pause(caller string) error
	Unpause(caller string) error
	GetTokenInfo(tokenID string) (*domain.TokenInfo, error)
}

// Command actions.
const (
	ActionInitialize    = "initialize"
	ActionBuy           = "buy"
	ActionSell          = "sell"
	ActionQuoteBuy      = "quote_buy"
	ActionQuoteSell     = "quote_sell"
	ActionClaimCreator  = "claim_creator"
	ActionClaimPlatform = "claim_platform"
	ActionPause         = "pause"
	ActionUnpause       = "unpause"
	ActionTokenInfo     = "token_info"
)

// dispatch runs a command against the engine and shapes the response.
func (h *Hub) dispatch(cmd *Command) *Response {
	result, err := h.execute(cmd)
	resp := &Response{
		Type:      MessageTypeResponse,
		RequestID: cmd.RequestID,
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	resp.Result = result
	return resp
}

func (h *Hub) execute(cmd *Command) (any, error) {
	switch cmd.Action {
	case ActionInitialize:
		info, err := h.engine.InitializeToken(cmd.TokenID, cmd.Caller, cmd.TradingEnabledAt)
		if err != nil {
			return nil, err
		}
		return tokenInfoFromDomain(info), nil

	case ActionBuy, ActionSell:
		amountIn, err := parseAmount(cmd.AmountIn, "amount_in")
		if err != nil {
			return nil, err
		}
		minOut, err := parseOptionalAmount(cmd.MinAmountOut, "min_amount_out")
		if err != nil {
			return nil, err
		}
		var trade *domain.TradeRecord
		if cmd.Action == ActionBuy {
			trade, err = h.engine.Buy(cmd.Caller, cmd.TokenID, amountIn, minOut, cmd.Block)
		} else {
			trade, err = h.engine.Sell(cmd.Caller, cmd.TokenID, amountIn, minOut, cmd.Block)
		}
		if err != nil {
			return nil, err
		}
		return tradeMessage(trade), nil

	case ActionQuoteBuy, ActionQuoteSell:
		amountIn, err := parseAmount(cmd.AmountIn, "amount_in")
		if err != nil {
			return nil, err
		}
		var quote *domain.Quote
		if cmd.Action == ActionQuoteBuy {
			quote, err = h.engine.QuoteBuy(cmd.TokenID, amountIn)
		} else {
			quote, err = h.engine.QuoteSell(cmd.TokenID, amountIn)
		}
		if err != nil {
			return nil, err
		}
		return &quoteResult{
			TokenID:   quote.TokenID,
			Side:      quote.Side,
			AmountIn:  bigString(quote.AmountIn),
			AmountOut: bigString(quote.AmountOut),
			Price:     bigString(quote.Price),
		}, nil

	case ActionClaimCreator:
		claim, err := h.engine.ClaimCreatorFees(cmd.Caller, cmd.TokenID)
		if err != nil {
			return nil, err
		}
		return claimResultFromDomain(claim), nil

	case ActionClaimPlatform:
		claim, err := h.engine.ClaimPlatformFees(cmd.Caller)
		if err != nil {
			return nil, err
		}
		return claimResultFromDomain(claim), nil

	case ActionPause:
		return nil, h.engine.Pause(cmd.Caller)

	case ActionUnpause:
		return nil, h.engine.Unpause(cmd.Caller)

	case ActionTokenInfo:
		info, err := h.engine.GetTokenInfo(cmd.TokenID)
		if err != nil {
			return nil, err
		}
		return tokenInfoFromDomain(info), nil

	default:
		return nil, fmt.Errorf("unknown action %q", cmd.Action)
	}
}

func claimResultFromDomain(c *domain.FeeClaim) *claimResult {
	return &claimResult{
		ClaimID:     c.ClaimID,
		Kind:        c.Kind,
		Claimant:    c.Claimant,
		TokenID:     c.TokenID,
		Amount:      bigString(c.Amount),
		TimestampMs: c.TimestampMs,
	}
}

func parseAmount(s, field string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%s is not a decimal integer", field)
	}
	return v, nil
}

// parseOptionalAmount returns nil for an empty string, which disables
// slippage protection.
func parseOptionalAmount(s, field string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	return parseAmount(s, field)
}
