// Package feed exposes the live trade feed over WebSocket. Connected
// clients receive every committed trade and graduation as JSON, and may
// submit engine commands on the same connection.
//
// All reserve and fee amounts cross the wire as decimal strings:
// 1e18-scaled values do not fit in JSON numbers.
package feed

import (
	"math/big"

	"launch-curve/internal/domain"
)

// Outbound message types.
const (
	MessageTypeTrade      = "trade"
	MessageTypeGraduation = "graduation"
	MessageTypeResponse   = "response"
)

// TradeMessage is the wire form of a committed trade.
type TradeMessage struct {
	Type                string `json:"type"`
	TradeID             string `json:"trade_id"`
	TokenID             string `json:"token_id"`
	Trader              string `json:"trader"`
	Side                string `json:"side"`
	AmountIn            string `json:"amount_in"`
	AmountOut           string `json:"amount_out"`
	CreatorFee          string `json:"creator_fee"`
	PlatformFee         string `json:"platform_fee"`
	Price               string `json:"price"`
	VirtualEthReserve   string `json:"virtual_eth_reserve"`
	VirtualTokenReserve string `json:"virtual_token_reserve"`
	Block               int64  `json:"block"`
	TimestampMs         int64  `json:"timestamp_ms"`
}

// GraduationMessage is the wire form of a graduation.
type GraduationMessage struct {
	Type              string `json:"type"`
	TokenID           string `json:"token_id"`
	TriggeringTradeID string `json:"triggering_trade_id"`
	MarketCapUSD      string `json:"market_cap_usd"`
	Block             int64  `json:"block"`
	TimestampMs       int64  `json:"timestamp_ms"`
}

// Command is an inbound engine command. Amount fields are decimal
// strings; unused fields may be omitted per action.
type Command struct {
	// RequestID is echoed back on the response for correlation.
	RequestID string `json:"request_id,omitempty"`

	// Action is one of: initialize, buy, sell, quote_buy, quote_sell,
	// claim_creator, claim_platform, pause, unpause, token_info.
	Action string `json:"action"`

	TokenID          string `json:"token_id,omitempty"`
	Caller           string `json:"caller,omitempty"`
	AmountIn         string `json:"amount_in,omitempty"`
	MinAmountOut     string `json:"min_amount_out,omitempty"`
	Block            int64  `json:"block,omitempty"`
	TradingEnabledAt int64  `json:"trading_enabled_at,omitempty"`
}

// Response answers a Command. Result holds the action-specific payload.
type Response struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Result    any    `json:"result,omitempty"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func tradeMessage(t *domain.TradeRecord) *TradeMessage {
	return &TradeMessage{
		Type:                MessageTypeTrade,
		TradeID:             t.TradeID,
		TokenID:             t.TokenID,
		Trader:              t.Trader,
		Side:                t.Side,
		AmountIn:            bigString(t.AmountIn),
		AmountOut:           bigString(t.AmountOut),
		CreatorFee:          bigString(t.CreatorFee),
		PlatformFee:         bigString(t.PlatformFee),
		Price:               bigString(t.Price),
		VirtualEthReserve:   bigString(t.VirtualEthReserve),
		VirtualTokenReserve: bigString(t.VirtualTokenReserve),
		Block:               t.Block,
		TimestampMs:         t.TimestampMs,
	}
}

func graduationMessage(g *domain.GraduationRecord) *GraduationMessage {
	return &GraduationMessage{
		Type:              MessageTypeGraduation,
		TokenID:           g.TokenID,
		TriggeringTradeID: g.TriggeringTradeID,
		MarketCapUSD:      bigString(g.MarketCapUSD),
		Block:             g.Block,
		TimestampMs:       g.TimestampMs,
	}
}

// tokenInfoResult is the token_info response payload.
type tokenInfoResult struct {
	TokenID             string `json:"token_id"`
	Creator             string `json:"creator"`
	VirtualEthReserve   string `json:"virtual_eth_reserve"`
	VirtualTokenReserve string `json:"virtual_token_reserve"`
	RealEthReserve      string `json:"real_eth_reserve"`
	RealTokenReserve    string `json:"real_token_reserve"`
	CreatorFees         string `json:"creator_fees"`
	PlatformFees        string `json:"platform_fees"`
	TotalVolumeTraded   string `json:"total_volume_traded"`
	TradingEnabledAt    int64  `json:"trading_enabled_at"`
	LastTradeBlock      int64  `json:"last_trade_block"`
	Graduated           bool   `json:"graduated"`
}

func tokenInfoFromDomain(info *domain.TokenInfo) *tokenInfoResult {
	return &tokenInfoResult{
		TokenID:             info.TokenID,
		Creator:             info.Creator,
		VirtualEthReserve:   bigString(info.VirtualEthReserve),
		VirtualTokenReserve: bigString(info.VirtualTokenReserve),
		RealEthReserve:      bigString(info.RealEthReserve),
		RealTokenReserve:    bigString(info.RealTokenReserve),
		CreatorFees:         bigString(info.CreatorFees),
		PlatformFees:        bigString(info.PlatformFees),
		TotalVolumeTraded:   bigString(info.TotalVolumeTraded),
		TradingEnabledAt:    info.TradingEnabledAt,
		LastTradeBlock:      info.LastTradeBlock,
		Graduated:           info.Graduated,
	}
}

// quoteResult is the quote_buy / quote_sell response payload.
type quoteResult struct {
	TokenID   string `json:"token_id"`
	Side      string `json:"side"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Price     string `json:"price"`
}

// claimResult is the claim_creator / claim_platform response payload.
type claimResult struct {
	ClaimID     string `json:"claim_id"`
	Kind        string `json:"kind"`
	Claimant    string `json:"claimant"`
	TokenID     string `json:"token_id,omitempty"`
	Amount      string `json:"amount"`
	TimestampMs int64  `json:"timestamp_ms"`
}
