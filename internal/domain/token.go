package domain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned when a token or principal address fails validation.
var ErrInvalidAddress = errors.New("invalid address")

// Trade side constants.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// ValidateAddress checks that addr is a base58-encoded 32-byte ed25519
// public key on the curve. Token IDs use this address form; principals
// (creators, traders, fee recipients) are opaque to the engine and are
// authenticated by the host.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %s: not base58", ErrInvalidAddress, addr)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: %s: expected 32 bytes, got %d", ErrInvalidAddress, addr, len(raw))
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("%w: %s: not on ed25519 curve", ErrInvalidAddress, addr)
	}
	return nil
}

// isOnCurve checks whether a 32-byte point is a valid ed25519 curve point.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
