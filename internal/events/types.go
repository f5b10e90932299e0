package events

import (
	"time"

	"launch-curve/internal/domain"
)

// EventType represents the type of event.
type EventType string

const (
	// Token lifecycle events
	TokenInitialized EventType = "token.initialized"
	TokenGraduated   EventType = "token.graduated"

	// Trade events
	TradeExecuted EventType = "trade.executed"

	// Fee events
	FeesClaimed EventType = "fees.claimed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// TokenInitializedEvent is emitted when a token is listed on the curve.
type TokenInitializedEvent struct {
	BaseEvent
	TokenID          string
	Creator          string
	TradingEnabledAt int64
}

// TradeExecutedEvent is emitted after a buy or sell commits.
type TradeExecutedEvent struct {
	BaseEvent
	Trade *domain.TradeRecord
}

// TokenGraduatedEvent is emitted when a token crosses the market-cap
// threshold and leaves curve trading.
type TokenGraduatedEvent struct {
	BaseEvent
	Graduation *domain.GraduationRecord
}

// FeesClaimedEvent is emitted after a successful fee claim.
type FeesClaimedEvent struct {
	BaseEvent
	Claim *domain.FeeClaim
}
