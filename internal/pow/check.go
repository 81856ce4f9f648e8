package pow

import (
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/pkg/util"
)

// CheckProofOfWork reports whether hash satisfies the compact target bits.
// Targets that are negative, zero, overflowed or easier than the network's
// PowLimit are rejected. A hash equal to the target passes.
func CheckProofOfWork(hash [32]byte, bits uint32, p *chaincfg.Params) bool {
	target, ok := util.ValidTarget(bits, p.PowLimit)
	if !ok {
		return false
	}
	return util.HashMeetsTarget(hash, target)
}
