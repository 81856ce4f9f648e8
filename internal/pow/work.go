package pow

import (
	"github.com/holiman/uint256"

	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/pkg/util"
)

// CalcWork returns the expected number of hashes needed to find a block with
// the compact target bits, 2^256 / (target+1). Invalid targets are worth no
// work.
func CalcWork(bits uint32) *uint256.Int {
	target, negative, overflow := util.CompactToTarget(bits)
	if negative || overflow || target.IsZero() {
		return new(uint256.Int)
	}

	// 2^256 does not fit, so compute (2^256 - target - 1) / (target+1) + 1.
	denom := new(uint256.Int).AddUint64(target, 1)
	work := new(uint256.Int).Not(target)
	work.Div(work, denom)
	return work.AddUint64(work, 1)
}

// Difficulty returns how many times harder bits is than the network's
// PowLimit. Invalid targets report zero.
func Difficulty(bits uint32, p *chaincfg.Params) float64 {
	target, ok := util.ValidTarget(bits, p.PowLimit)
	if !ok {
		return 0
	}
	return util.TargetToDifficulty(target, p.PowLimit)
}
