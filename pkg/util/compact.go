package util

import (
	"github.com/holiman/uint256"
)

const (
	compactSignBit  = 0x00800000
	compactMantissa = 0x007fffff
)

// CompactToTarget decodes a compact (nBits) value into a 256-bit target.
//
// The high byte is a base-256 exponent, bit 23 is a sign bit and the low 23
// bits are the mantissa:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// The magnitude is returned without the sign. negative reports a set sign bit
// on a non-zero mantissa. overflow reports that the value does not fit in 256
// bits; in that case the returned magnitude has its high bits shifted out.
func CompactToTarget(compact uint32) (target *uint256.Int, negative, overflow bool) {
	exponent := uint(compact >> 24)
	word := compact & compactMantissa

	target = new(uint256.Int)
	if exponent <= 3 {
		word >>= 8 * (3 - exponent)
		target.SetUint64(uint64(word))
	} else {
		target.SetUint64(uint64(word))
		target.Lsh(target, 8*(exponent-3))
	}

	negative = word != 0 && compact&compactSignBit != 0
	overflow = word != 0 && (exponent > 34 ||
		(word > 0xff && exponent > 33) ||
		(word > 0xffff && exponent > 32))
	return target, negative, overflow
}

// TargetToCompact encodes a 256-bit target using the smallest exponent that
// holds its three most significant bytes. Precision below those bytes is lost.
func TargetToCompact(target *uint256.Int) uint32 {
	return encodeCompact(target, false)
}

// CanonicalCompact re-encodes a compact value in its normalized form. Two
// encodings of the same number map to the same canonical value.
func CanonicalCompact(compact uint32) uint32 {
	target, negative, _ := CompactToTarget(compact)
	return encodeCompact(target, negative)
}

func encodeCompact(target *uint256.Int, negative bool) uint32 {
	size := uint32((target.BitLen() + 7) / 8)

	var compact uint32
	if size <= 3 {
		compact = uint32(target.Uint64() << (8 * (3 - size)))
	} else {
		shifted := new(uint256.Int).Rsh(target, uint(8*(size-3)))
		compact = uint32(shifted.Uint64())
	}

	// A set 0x00800000 bit would read back as the sign, so move the mantissa
	// down a byte and grow the exponent.
	if compact&compactSignBit != 0 {
		compact >>= 8
		size++
	}

	compact |= size << 24
	if negative && compact&compactMantissa != 0 {
		compact |= compactSignBit
	}
	return compact
}

// ValidTarget decodes compact and reports whether it is a usable proof-of-work
// target: positive, not overflowed and no larger than limit.
func ValidTarget(compact uint32, limit *uint256.Int) (*uint256.Int, bool) {
	target, negative, overflow := CompactToTarget(compact)
	if negative || overflow || target.IsZero() || target.Gt(limit) {
		return target, false
	}
	return target, true
}
