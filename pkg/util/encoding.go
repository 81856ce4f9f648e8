package util

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// ParseCompactHex parses nBits written as hex, with or without a 0x prefix
// (e.g. "1e0ffff0").
func ParseCompactHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 8 {
		return 0, fmt.Errorf("invalid compact bits %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid compact bits %q: %w", s, err)
	}
	return uint32(v), nil
}

// CompactToHex formats nBits as the 8-digit hex string used in block explorers.
func CompactToHex(compact uint32) string {
	return fmt.Sprintf("%08x", compact)
}

// HexToTarget parses a big-endian 256-bit hex number. Leading zeros are
// allowed, unlike uint256.FromHex.
func HexToTarget(s string) (*uint256.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, ok := new(big.Int).SetString(s, 16)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid target hex %q", s)
	}
	target, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("target %q exceeds 256 bits", s)
	}
	return target, nil
}

// MustHexToTarget is HexToTarget for package-level constants.
func MustHexToTarget(s string) *uint256.Int {
	target, err := HexToTarget(s)
	if err != nil {
		panic(err)
	}
	return target
}
