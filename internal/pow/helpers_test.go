package pow

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/florincoin/floretarget/internal/blockindex"
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/internal/types"
	"github.com/florincoin/floretarget/pkg/util"
)

// diff1Bits is the Bitcoin difficulty 1 target, well inside the Florincoin
// PowLimit.
const diff1Bits = 0x1d00ffff

const genesisTime = 1371488396

// chainIndex is a map-backed blockindex.Reader.
type chainIndex map[[32]byte]*blockindex.Node

func (c chainIndex) Get(hash [32]byte) (*blockindex.Node, bool) {
	n, ok := c[hash]
	return n, ok
}

// buildChain links count headers. timeAt and bitsAt supply the timestamp and
// compact target for each height.
func buildChain(count int, timeAt func(int32) int64, bitsAt func(int32) uint32) (chainIndex, []*blockindex.Node) {
	idx := make(chainIndex, count)
	nodes := make([]*blockindex.Node, 0, count)

	var prev [32]byte
	for h := int32(0); h < int32(count); h++ {
		header := types.BlockHeader{
			Version:   1,
			PrevBlock: prev,
			Timestamp: uint32(timeAt(h)),
			Bits:      bitsAt(h),
			Nonce:     uint32(h),
		}
		n := blockindex.NewNode(header, h)
		idx[n.Hash()] = n
		nodes = append(nodes, n)
		prev = n.Hash()
	}
	return idx, nodes
}

func spacedBy(seconds int64) func(int32) int64 {
	return func(h int32) int64 {
		return genesisTime + int64(h)*seconds
	}
}

func constBits(bits uint32) func(int32) uint32 {
	return func(int32) uint32 { return bits }
}

// targetHash returns the little-endian hash whose numeric value is target.
func targetHash(target *uint256.Int) [32]byte {
	be := target.Bytes32()
	var h [32]byte
	copy(h[:], util.ReverseBytes(be[:]))
	return h
}

func mustTarget(t *testing.T, bits uint32) *uint256.Int {
	t.Helper()
	target, negative, overflow := util.CompactToTarget(bits)
	if negative || overflow {
		t.Fatalf("bits 0x%08x do not decode to a positive target", bits)
	}
	return target
}

func mustParams(t *testing.T, p *chaincfg.Params) *chaincfg.Params {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return p
}
