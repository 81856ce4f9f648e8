// Package blockindex stores block headers keyed by hash with explicit parent
// links. The proof-of-work engine reads it through the Reader interface.
package blockindex

import (
	"errors"

	"github.com/florincoin/floretarget/internal/types"
)

var (
	// ErrDuplicate is returned when adding a header that is already indexed.
	ErrDuplicate = errors.New("header already indexed")

	// ErrOrphan is returned when adding a header whose parent is unknown.
	ErrOrphan = errors.New("parent header not indexed")
)

// Node is an indexed header together with its height.
type Node struct {
	Header types.BlockHeader
	Height int32

	hash [32]byte
}

// NewNode wraps a header at the given height.
func NewNode(header types.BlockHeader, height int32) *Node {
	return &Node{
		Header: header,
		Height: height,
		hash:   header.Hash(),
	}
}

// Hash returns the block hash.
func (n *Node) Hash() [32]byte {
	return n.hash
}

// Time returns the header timestamp in seconds.
func (n *Node) Time() int64 {
	return int64(n.Header.Timestamp)
}

// Bits returns the compact target carried by the header.
func (n *Node) Bits() uint32 {
	return n.Header.Bits
}

// IsRoot reports whether the node is the first block of its chain.
func (n *Node) IsRoot() bool {
	return n.Height == 0
}

// Reader resolves headers by hash. Implementations must present a stable view
// for the duration of a single engine call.
type Reader interface {
	Get(hash [32]byte) (*Node, bool)
}

// Store is a writable header index.
type Store interface {
	Reader
	Has(hash [32]byte) bool
	Add(header types.BlockHeader) (*Node, error)
	Tip() (*Node, bool)
	SetTip(hash [32]byte) error
	GetAncestors(hash [32]byte, max int) []*Node
	Count() int
	Close() error
}

// Parent returns the parent of n. ok is false at the root or when the parent
// is missing from the index.
func Parent(r Reader, n *Node) (*Node, bool) {
	if n.IsRoot() {
		return nil, false
	}
	return r.Get(n.Header.PrevBlock)
}

// childHeight computes the height of header given a store lookup.
func childHeight(r Reader, header *types.BlockHeader) (int32, error) {
	if header.IsGenesis() {
		return 0, nil
	}
	parent, ok := r.Get(header.PrevBlock)
	if !ok {
		return 0, ErrOrphan
	}
	return parent.Height + 1, nil
}

// collectAncestors walks parent links from hash, newest first.
func collectAncestors(r Reader, hash [32]byte, max int) []*Node {
	var out []*Node
	n, ok := r.Get(hash)
	for ok && len(out) < max {
		out = append(out, n)
		n, ok = Parent(r, n)
	}
	return out
}
