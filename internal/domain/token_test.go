package domain

import (
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

// generatorAddr is the base58 encoding of the canonical ed25519 base
// point, which is on the curve by definition.
func generatorAddr() string {
	raw := make([]byte, 32)
	raw[0] = 0x58
	for i := 1; i < 32; i++ {
		raw[i] = 0x66
	}
	return base58.Encode(raw)
}

func TestValidateAddress_Valid(t *testing.T) {
	// The identity element encodes as 0x01 followed by zeros and is a
	// valid curve point.
	identity := make([]byte, 32)
	identity[0] = 1

	for _, addr := range []string{generatorAddr(), base58.Encode(identity)} {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%s) failed: %v", addr, err)
		}
	}
}

func TestValidateAddress_Empty(t *testing.T) {
	err := ValidateAddress("")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestValidateAddress_NotBase58(t *testing.T) {
	// 0, I, O, l are not in the base58 alphabet.
	err := ValidateAddress("0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestValidateAddress_WrongLength(t *testing.T) {
	// Valid base58 but decodes to fewer than 32 bytes.
	err := ValidateAddress("abc")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestValidateAddress_NotOnCurve(t *testing.T) {
	// y >= p is rejected by the ed25519 decoder: 32 bytes of 0xff is a
	// non-canonical encoding.
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = 0xff
	}
	err := ValidateAddress(base58.Encode(raw))
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
