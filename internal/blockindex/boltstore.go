package blockindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/florincoin/floretarget/internal/types"
	"github.com/florincoin/floretarget/pkg/util"
)

var (
	headersBucket = []byte("headers")
	metaBucket    = []byte("meta")
	tipKey        = []byte("tip")
)

const nodeRecordSize = types.HeaderSize + 4

var _ Store = (*BoltStore)(nil)

// BoltStore is a header index backed by a bbolt database file.
type BoltStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

// NewBoltStore opens (or creates) the index at path.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open header index %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(headersBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init header index buckets: %w", err)
	}

	s := &BoltStore{db: db, logger: logger}
	logger.Info("header index opened",
		zap.String("path", path),
		zap.Int("headers", s.Count()))
	return s, nil
}

// Get returns the node for hash.
func (s *BoltStore) Get(hash [32]byte) (*Node, bool) {
	var n *Node
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		n, err = getNode(tx, hash)
		return err
	})
	if err != nil {
		s.logger.Warn("corrupt header record", zap.String("hash", util.HashToHex(hash)), zap.Error(err))
		return nil, false
	}
	return n, n != nil
}

// Has reports whether hash is indexed.
func (s *BoltStore) Has(hash [32]byte) bool {
	var ok bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(headersBucket).Get(hash[:]) != nil
		return nil
	})
	return ok
}

// Add indexes a header whose parent is already present (or a genesis header).
func (s *BoltStore) Add(header types.BlockHeader) (*Node, error) {
	var n *Node
	err := s.db.Update(func(tx *bolt.Tx) error {
		height, err := childHeight(txReader{tx}, &header)
		if err != nil {
			return err
		}
		n = NewNode(header, height)
		hash := n.Hash()
		b := tx.Bucket(headersBucket)
		if b.Get(hash[:]) != nil {
			return ErrDuplicate
		}
		return b.Put(hash[:], encodeNode(n))
	})
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", header.HashHex(), err)
	}
	return n, nil
}

// Tip returns the current chain tip.
func (s *BoltStore) Tip() (*Node, bool) {
	var n *Node
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(metaBucket).Get(tipKey)
		if raw == nil {
			return nil
		}
		var hash [32]byte
		copy(hash[:], raw)
		var err error
		n, err = getNode(tx, hash)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to load tip", zap.Error(err))
		return nil, false
	}
	return n, n != nil
}

// SetTip marks hash as the chain tip.
func (s *BoltStore) SetTip(hash [32]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(headersBucket).Get(hash[:]) == nil {
			return fmt.Errorf("set tip %s: header not indexed", util.HashToHex(hash))
		}
		return tx.Bucket(metaBucket).Put(tipKey, hash[:])
	})
}

// GetAncestors returns up to max nodes starting at hash, newest first. The
// walk runs inside one read transaction.
func (s *BoltStore) GetAncestors(hash [32]byte, max int) []*Node {
	var out []*Node
	_ = s.db.View(func(tx *bolt.Tx) error {
		out = collectAncestors(txReader{tx}, hash, max)
		return nil
	})
	return out
}

// Count returns the number of indexed headers.
func (s *BoltStore) Count() int {
	var count int
	_ = s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(headersBucket).Stats().KeyN
		return nil
	})
	return count
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// txReader resolves nodes inside an open transaction.
type txReader struct {
	tx *bolt.Tx
}

func (r txReader) Get(hash [32]byte) (*Node, bool) {
	n, err := getNode(r.tx, hash)
	if err != nil || n == nil {
		return nil, false
	}
	return n, true
}

func getNode(tx *bolt.Tx, hash [32]byte) (*Node, error) {
	raw := tx.Bucket(headersBucket).Get(hash[:])
	if raw == nil {
		return nil, nil
	}
	return decodeNode(raw)
}

func encodeNode(n *Node) []byte {
	buf := make([]byte, 0, nodeRecordSize)
	buf = append(buf, n.Header.Serialize()...)
	return binary.LittleEndian.AppendUint32(buf, uint32(n.Height))
}

func decodeNode(raw []byte) (*Node, error) {
	if len(raw) != nodeRecordSize {
		return nil, errors.New("bad record length")
	}
	header, err := types.DeserializeHeader(raw[:types.HeaderSize])
	if err != nil {
		return nil, err
	}
	height := int32(binary.LittleEndian.Uint32(raw[types.HeaderSize:]))
	return NewNode(*header, height), nil
}
