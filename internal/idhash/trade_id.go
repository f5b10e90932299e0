// Package idhash computes deterministic identifiers for trade and claim
// records using SHA256.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade identifier.
// Formula: SHA256(token_id|trader|side|block)
// The same-block restriction guarantees at most one trade per token per
// block, so (token_id, block) alone is already unique.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(tokenID, trader, side string, block int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", tokenID, trader, side, block)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeClaimID computes a deterministic claim identifier.
// Formula: SHA256(kind|claimant|token_id|timestamp_ms)
func ComputeClaimID(kind, claimant, tokenID string, timestampMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", kind, claimant, tokenID, timestampMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
