package blockindex

import (
	"fmt"
	"sync"

	"github.com/florincoin/floretarget/internal/types"
	"github.com/florincoin/floretarget/pkg/util"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory header index.
type MemStore struct {
	mu     sync.RWMutex
	nodes  map[[32]byte]*Node
	tip    [32]byte
	hasTip bool
}

// NewMemStore creates an empty in-memory index.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[[32]byte]*Node),
	}
}

// Get returns the node for hash.
func (s *MemStore) Get(hash [32]byte) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[hash]
	return n, ok
}

// Has reports whether hash is indexed.
func (s *MemStore) Has(hash [32]byte) bool {
	_, ok := s.Get(hash)
	return ok
}

// Add indexes a header whose parent is already present (or a genesis header).
func (s *MemStore) Add(header types.BlockHeader) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	height, err := childHeight(memReader(s.nodes), &header)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", header.HashHex(), err)
	}
	n := NewNode(header, height)
	if _, ok := s.nodes[n.Hash()]; ok {
		return nil, fmt.Errorf("add %s: %w", util.HashToHex(n.Hash()), ErrDuplicate)
	}
	s.nodes[n.Hash()] = n
	return n, nil
}

// Tip returns the current chain tip.
func (s *MemStore) Tip() (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTip {
		return nil, false
	}
	n, ok := s.nodes[s.tip]
	return n, ok
}

// SetTip marks hash as the chain tip.
func (s *MemStore) SetTip(hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[hash]; !ok {
		return fmt.Errorf("set tip %s: header not indexed", util.HashToHex(hash))
	}
	s.tip = hash
	s.hasTip = true
	return nil
}

// GetAncestors returns up to max nodes starting at hash, newest first.
func (s *MemStore) GetAncestors(hash [32]byte, max int) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectAncestors(memReader(s.nodes), hash, max)
}

// Count returns the number of indexed headers.
func (s *MemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

// memReader reads the map directly; callers hold the lock.
type memReader map[[32]byte]*Node

func (m memReader) Get(hash [32]byte) (*Node, bool) {
	n, ok := m[hash]
	return n, ok
}
