package testutil

import (
	"testing"

	"github.com/florincoin/floretarget/internal/blockindex"
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/internal/pow"
	"github.com/florincoin/floretarget/internal/types"
	"github.com/florincoin/floretarget/pkg/util"
)

// GenesisTime is the timestamp used for generated root headers.
const GenesisTime = 1371488396

// SampleHeader returns an unmined header on top of prev.
func SampleHeader(prev [32]byte, timestamp, bits uint32) types.BlockHeader {
	h := types.BlockHeader{
		Version:   1,
		PrevBlock: prev,
		Timestamp: timestamp,
		Bits:      bits,
	}
	h.MerkleRoot = util.DoubleSHA256(append(prev[:], byte(timestamp), byte(timestamp>>8)))
	return h
}

// MineHeader increments the nonce until the header's proof-of-work hash meets
// its bits. Only practical for targets close to the regtest limit.
func MineHeader(t testing.TB, h *types.BlockHeader, p *chaincfg.Params) {
	t.Helper()
	for i := 0; i < 1<<20; i++ {
		if pow.CheckProofOfWork(h.PowHash(), h.Bits, p) {
			return
		}
		h.Nonce++
	}
	t.Fatalf("no nonce found for bits 0x%08x", h.Bits)
}

// BreakHeader increments the nonce until the proof-of-work hash misses its bits.
func BreakHeader(t testing.TB, h *types.BlockHeader, p *chaincfg.Params) {
	t.Helper()
	for i := 0; i < 1<<10; i++ {
		h.Nonce++
		if !pow.CheckProofOfWork(h.PowHash(), h.Bits, p) {
			return
		}
	}
	t.Fatalf("every nonce meets bits 0x%08x", h.Bits)
}

// BuildChain mines count headers spacing seconds apart into s, each carrying
// the target the engine requires, and moves the tip to the last one.
func BuildChain(t testing.TB, s blockindex.Store, p *chaincfg.Params, count int, spacing int64) []*blockindex.Node {
	t.Helper()

	nodes := make([]*blockindex.Node, 0, count)
	var parent *blockindex.Node
	for i := 0; i < count; i++ {
		var prev [32]byte
		ts := int64(GenesisTime)
		if parent != nil {
			prev = parent.Hash()
			ts = parent.Time() + spacing
		}

		bits, err := pow.NextWorkRequired(s, parent, ts, p)
		if err != nil {
			t.Fatalf("required bits at height %d: %v", i, err)
		}
		h := SampleHeader(prev, uint32(ts), bits)
		MineHeader(t, &h, p)

		n, err := s.Add(h)
		if err != nil {
			t.Fatalf("add header %d: %v", i, err)
		}
		nodes = append(nodes, n)
		parent = n
	}

	if parent != nil {
		if err := s.SetTip(parent.Hash()); err != nil {
			t.Fatalf("set tip: %v", err)
		}
	}
	return nodes
}

// EasyParams is a retargeting network with the regtest pow limit so headers
// can be mined in tests: 4-block windows at 10 second spacing.
func EasyParams(t testing.TB) *chaincfg.Params {
	t.Helper()
	p := &chaincfg.Params{
		Name:          "easy",
		PowLimit:      util.MustHexToTarget("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
		TargetSpacing: 10,
		ClampMode:     chaincfg.ClampTwoSided,
		Epochs: []chaincfg.Epoch{
			{ActivationHeight: 0, AveragingWindow: 4, Interval: 4, TargetTimespan: 40, MaxAdjustUp: 50, MaxAdjustDown: 100},
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("easy params: %v", err)
	}
	return p
}
