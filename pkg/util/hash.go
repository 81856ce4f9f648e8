package util

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/holiman/uint256"
)

// DoubleSHA256 computes SHA256(SHA256(data)), used for block identifiers.
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// ReverseBytes returns a new slice with bytes reversed.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// HashToHex returns a reversed hex string of a hash (display order).
func HashToHex(hash [32]byte) string {
	return hex.EncodeToString(ReverseBytes(hash[:]))
}

// HexToHash converts a display-order hex string back to a [32]byte hash.
func HexToHash(s string) ([32]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return [32]byte{}, err
	}
	if len(b) != 32 {
		return [32]byte{}, hex.ErrLength
	}
	var h [32]byte
	copy(h[:], ReverseBytes(b))
	return h, nil
}

// HashToTarget interprets a little-endian hash as a 256-bit unsigned integer.
func HashToTarget(hash [32]byte) *uint256.Int {
	return new(uint256.Int).SetBytes(ReverseBytes(hash[:]))
}

// HashMeetsTarget checks if a hash (as little-endian 32 bytes) is <= target.
func HashMeetsTarget(hash [32]byte, target *uint256.Int) bool {
	return HashToTarget(hash).Cmp(target) <= 0
}

// TargetToDifficulty converts a target to difficulty relative to the given max target.
func TargetToDifficulty(target, maxTarget *uint256.Int) float64 {
	if target.IsZero() {
		return 0
	}
	// difficulty = maxTarget / target
	maxFloat := new(big.Float).SetInt(maxTarget.ToBig())
	targetFloat := new(big.Float).SetInt(target.ToBig())
	diff := new(big.Float).Quo(maxFloat, targetFloat)
	result, _ := diff.Float64()
	return result
}

// DifficultyToTarget converts a difficulty to a target given the max target.
// Difficulties below 1 saturate at maxTarget.
func DifficultyToTarget(difficulty float64, maxTarget *uint256.Int) *uint256.Int {
	if difficulty <= 1 {
		return new(uint256.Int).Set(maxTarget)
	}
	maxFloat := new(big.Float).SetInt(maxTarget.ToBig())
	diffFloat := new(big.Float).SetFloat64(difficulty)
	targetFloat := new(big.Float).Quo(maxFloat, diffFloat)

	target, _ := targetFloat.Int(nil)
	return uint256.MustFromBig(target)
}
