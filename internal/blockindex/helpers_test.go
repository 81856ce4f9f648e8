package blockindex

import (
	"testing"

	"go.uber.org/zap"

	"github.com/florincoin/floretarget/internal/types"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func makeTestHeader(prev [32]byte, timestamp uint32) types.BlockHeader {
	return types.BlockHeader{
		Version:   2,
		PrevBlock: prev,
		Timestamp: timestamp,
		Bits:      0x1e0ffff0,
		Nonce:     timestamp,
	}
}

// buildChain adds count linked headers 40 seconds apart and returns their hashes.
func buildChain(t *testing.T, s Store, count int) [][32]byte {
	t.Helper()
	var prev [32]byte
	hashes := make([][32]byte, 0, count)
	for i := 0; i < count; i++ {
		n, err := s.Add(makeTestHeader(prev, uint32(1700000000+i*40)))
		if err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
		if n.Height != int32(i) {
			t.Fatalf("height of header %d = %d", i, n.Height)
		}
		prev = n.Hash()
		hashes = append(hashes, prev)
	}
	return hashes
}
