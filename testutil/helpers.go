package testutil

import (
	"testing"

	"github.com/florincoin/floretarget/pkg/util"
)

// MustHashFromHex parses a display-order block hash or fails the test.
func MustHashFromHex(t testing.TB, s string) [32]byte {
	t.Helper()
	h, err := util.HexToHash(s)
	if err != nil {
		t.Fatalf("invalid hash %q: %v", s, err)
	}
	return h
}
