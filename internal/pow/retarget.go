// Package pow decides the compact target a block must carry and checks block
// hashes against compact targets.
//
// Every function takes its network parameters explicitly and reads headers
// through a blockindex.Reader. Nothing in the package keeps state between
// calls.
package pow

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/florincoin/floretarget/internal/blockindex"
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/pkg/util"
)

// guardBits is the target bit length above which the recalculation drops one
// bit before multiplying by the timespan.
const guardBits = 235

var (
	// ErrChainUnderflow is returned when a retarget window reaches past the
	// root of the chain.
	ErrChainUnderflow = errors.New("retarget window extends past chain root")

	// ErrMissingAncestor is returned when a header needed for a retarget is
	// not in the index.
	ErrMissingAncestor = errors.New("ancestor header missing from index")
)

// NextWorkRequired returns the compact target required of the block that
// extends parent. candidateTime is the timestamp of that block and is only
// consulted on networks that allow minimum-difficulty blocks. A nil parent
// means the candidate is the root block.
func NextWorkRequired(chain blockindex.Reader, parent *blockindex.Node, candidateTime int64, p *chaincfg.Params) (uint32, error) {
	if parent == nil {
		return p.PowLimitBits, nil
	}

	next := parent.Height + 1
	rules := p.SelectEpoch(next)

	if int64(next)%rules.Interval != 0 {
		if !p.AllowMinDifficultyBlocks {
			return parent.Bits(), nil
		}
		// Production stalled: a PowLimit block is acceptable.
		if candidateTime > parent.Time()+2*p.TargetSpacing {
			return p.PowLimitBits, nil
		}
		return lastRegularBits(chain, parent, rules.Interval, p)
	}

	first, err := windowStart(chain, parent, next, rules.AveragingWindow)
	if err != nil {
		return 0, err
	}
	return CalculateNextWorkRequired(parent, first.Time(), p), nil
}

// CalculateNextWorkRequired scales the parent target by the measured duration
// of the averaging window ending at parent. firstBlockTime is the timestamp of
// the block that opens the window.
func CalculateNextWorkRequired(parent *blockindex.Node, firstBlockTime int64, p *chaincfg.Params) uint32 {
	if p.NoRetargeting {
		return parent.Bits()
	}

	rules := p.SelectEpoch(parent.Height + 1)
	actual := clampTimespan(parent.Time()-firstBlockTime, rules, p.ClampMode)

	target, _, _ := util.CompactToTarget(parent.Bits())
	shifted := target.BitLen() > guardBits
	if shifted {
		target.Rsh(target, 1)
	}
	target.Mul(target, uint256.NewInt(uint64(actual)))
	target.Div(target, uint256.NewInt(uint64(rules.TargetTimespan)))
	if shifted {
		target.Lsh(target, 1)
	}

	if target.Gt(p.PowLimit) {
		target.Set(p.PowLimit)
	}
	return util.TargetToCompact(target)
}

// clampTimespan bounds the measured timespan according to mode. The result is
// never negative because MinActualTimespan is not.
func clampTimespan(actual int64, rules chaincfg.EpochRules, mode chaincfg.ClampMode) int64 {
	if mode == chaincfg.ClampLegacy {
		// Both comparisons use the minimum bound, so the result is always
		// MinActualTimespan.
		if actual < rules.MinActualTimespan {
			actual = rules.MinActualTimespan
		}
		if actual > rules.MinActualTimespan {
			actual = rules.MinActualTimespan
		}
		return actual
	}

	if actual < rules.MinActualTimespan {
		actual = rules.MinActualTimespan
	}
	if actual > rules.MaxActualTimespan {
		actual = rules.MaxActualTimespan
	}
	return actual
}

// lastRegularBits walks back from parent past any PowLimit blocks granted by
// the minimum-difficulty rule and returns the bits of the first block that is
// either a retarget boundary, carries a different target, or is the root.
func lastRegularBits(chain blockindex.Reader, parent *blockindex.Node, interval int64, p *chaincfg.Params) (uint32, error) {
	cur := parent
	for !cur.IsRoot() && int64(cur.Height)%interval != 0 && cur.Bits() == p.PowLimitBits {
		prev, err := parentOf(chain, cur)
		if err != nil {
			return 0, err
		}
		cur = prev
	}
	return cur.Bits(), nil
}

// windowStart returns the block that opens the averaging window for the block
// at height next. The first retarget of a chain has one block fewer to step
// over because the root has no predecessor.
func windowStart(chain blockindex.Reader, parent *blockindex.Node, next int32, window int64) (*blockindex.Node, error) {
	steps := window
	if int64(next) == window {
		steps = window - 1
	}

	cur := parent
	for i := int64(0); i < steps; i++ {
		if cur.IsRoot() {
			return nil, fmt.Errorf("%w: window of %d blocks for height %d", ErrChainUnderflow, window, next)
		}
		prev, err := parentOf(chain, cur)
		if err != nil {
			return nil, err
		}
		cur = prev
	}
	return cur, nil
}

// parentOf resolves the parent of n and checks that heights decrease by one,
// which bounds every walk by the starting height.
func parentOf(chain blockindex.Reader, n *blockindex.Node) (*blockindex.Node, error) {
	prev, ok := chain.Get(n.Header.PrevBlock)
	if !ok {
		return nil, fmt.Errorf("%w: parent %s of block at height %d",
			ErrMissingAncestor, util.HashToHex(n.Header.PrevBlock), n.Height)
	}
	if prev.Height != n.Height-1 {
		return nil, fmt.Errorf("%w: parent of block at height %d indexed at height %d",
			ErrMissingAncestor, n.Height, prev.Height)
	}
	return prev, nil
}
