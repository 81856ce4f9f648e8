package types

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/scrypt"

	"github.com/florincoin/floretarget/pkg/util"
)

// HeaderSize is the length of a serialized block header.
const HeaderSize = 80

// Scrypt parameters of the proof-of-work hash (N, r, p, key length).
const (
	scryptN      = 1024
	scryptR      = 1
	scryptP      = 1
	scryptKeyLen = 32
)

// BlockHeader is an 80-byte block header.
type BlockHeader struct {
	Version    int32    `json:"version"`
	PrevBlock  [32]byte `json:"prev_block"`
	MerkleRoot [32]byte `json:"merkle_root"`
	Timestamp  uint32   `json:"timestamp"`
	Bits       uint32   `json:"bits"` // compact difficulty target (nBits)
	Nonce      uint32   `json:"nonce"`
}

// Serialize serializes the header to its 80-byte wire form.
func (h *BlockHeader) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlock[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	return buf
}

// DeserializeHeader parses an 80-byte wire header.
func DeserializeHeader(data []byte) (*BlockHeader, error) {
	if len(data) != HeaderSize {
		return nil, fmt.Errorf("header must be %d bytes, got %d", HeaderSize, len(data))
	}
	h := &BlockHeader{
		Version:   int32(binary.LittleEndian.Uint32(data[0:4])),
		Timestamp: binary.LittleEndian.Uint32(data[68:72]),
		Bits:      binary.LittleEndian.Uint32(data[72:76]),
		Nonce:     binary.LittleEndian.Uint32(data[76:80]),
	}
	copy(h.PrevBlock[:], data[4:36])
	copy(h.MerkleRoot[:], data[36:68])
	return h, nil
}

// Hash computes the double-SHA256 hash of the header (the block identifier).
func (h *BlockHeader) Hash() [32]byte {
	return util.DoubleSHA256(h.Serialize())
}

// PowHash computes the scrypt hash the proof-of-work target is checked against.
func (h *BlockHeader) PowHash() [32]byte {
	data := h.Serialize()
	key, err := scrypt.Key(data, data, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		// Only reachable with invalid scrypt parameters, which are constants.
		panic(fmt.Sprintf("scrypt: %v", err))
	}
	var out [32]byte
	copy(out[:], key)
	return out
}

// Time returns the header timestamp as a time.Time.
func (h *BlockHeader) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0)
}

// HashHex returns the block hash in display order.
func (h *BlockHeader) HashHex() string {
	return util.HashToHex(h.Hash())
}

// PrevBlockHex returns the parent hash in display order.
func (h *BlockHeader) PrevBlockHex() string {
	return util.HashToHex(h.PrevBlock)
}

// IsGenesis reports whether the header has no parent.
func (h *BlockHeader) IsGenesis() bool {
	var zeroHash [32]byte
	return h.PrevBlock == zeroHash
}
