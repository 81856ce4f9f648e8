package blockindex

import (
	"errors"
	"testing"
)

func TestMemStore_AddAndGet(t *testing.T) {
	s := NewMemStore()

	header := makeTestHeader([32]byte{}, 1700000000)
	n, err := s.Add(header)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !n.IsRoot() {
		t.Error("genesis header should be the root")
	}

	got, ok := s.Get(header.Hash())
	if !ok {
		t.Fatal("header not found after Add")
	}
	if got.Bits() != 0x1e0ffff0 || got.Time() != 1700000000 {
		t.Errorf("got bits 0x%08x time %d", got.Bits(), got.Time())
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestMemStore_Errors(t *testing.T) {
	s := NewMemStore()

	header := makeTestHeader([32]byte{}, 1700000000)
	if _, err := s.Add(header); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add(header); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Add error = %v, want ErrDuplicate", err)
	}

	orphan := makeTestHeader([32]byte{0xaa}, 1700000040)
	if _, err := s.Add(orphan); !errors.Is(err, ErrOrphan) {
		t.Errorf("orphan Add error = %v, want ErrOrphan", err)
	}

	if err := s.SetTip([32]byte{0xbb}); err == nil {
		t.Error("SetTip of unknown hash should fail")
	}
}

func TestMemStore_TipAndAncestors(t *testing.T) {
	s := NewMemStore()
	if _, ok := s.Tip(); ok {
		t.Error("empty store should not have tip")
	}

	hashes := buildChain(t, s, 5)
	tipHash := hashes[len(hashes)-1]
	if err := s.SetTip(tipHash); err != nil {
		t.Fatalf("SetTip: %v", err)
	}

	tip, ok := s.Tip()
	if !ok || tip.Hash() != tipHash {
		t.Fatal("tip mismatch")
	}
	if tip.Height != 4 {
		t.Errorf("tip height = %d, want 4", tip.Height)
	}

	ancestors := s.GetAncestors(tipHash, 10)
	if len(ancestors) != 5 {
		t.Fatalf("got %d ancestors, want 5", len(ancestors))
	}
	if ancestors[0].Hash() != tipHash || ancestors[4].Hash() != hashes[0] {
		t.Error("ancestors not ordered newest first")
	}

	if got := s.GetAncestors(tipHash, 2); len(got) != 2 {
		t.Errorf("limited ancestors = %d, want 2", len(got))
	}
}

func TestParent(t *testing.T) {
	s := NewMemStore()
	hashes := buildChain(t, s, 3)

	child, _ := s.Get(hashes[2])
	parent, ok := Parent(s, child)
	if !ok || parent.Hash() != hashes[1] {
		t.Fatal("Parent did not follow PrevBlock")
	}

	root, _ := s.Get(hashes[0])
	if _, ok := Parent(s, root); ok {
		t.Error("root should have no parent")
	}
}
