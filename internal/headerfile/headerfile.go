// Package headerfile reads and writes header dumps: a CBOR record of headers
// in height order, compressed with zstd.
package headerfile

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/florincoin/floretarget/internal/types"
)

// FormatVersion is written into every dump.
const FormatVersion = 1

// maxHeaders bounds a single dump.
const maxHeaders = 10_000_000

// HeaderMsg is the encoded form of a block header.
type HeaderMsg struct {
	Version    int32    `cbor:"1,keyasint"`
	PrevBlock  [32]byte `cbor:"2,keyasint"`
	MerkleRoot [32]byte `cbor:"3,keyasint"`
	Timestamp  uint32   `cbor:"4,keyasint"`
	Bits       uint32   `cbor:"5,keyasint"`
	Nonce      uint32   `cbor:"6,keyasint"`
}

// Dump is a run of consecutive headers from one network.
type Dump struct {
	FormatVersion uint8       `cbor:"1,keyasint"`
	Network       string      `cbor:"2,keyasint"`
	Headers       []HeaderMsg `cbor:"3,keyasint"`
}

// NewDump builds a dump from headers in height order.
func NewDump(network string, headers []types.BlockHeader) *Dump {
	d := &Dump{
		FormatVersion: FormatVersion,
		Network:       network,
		Headers:       make([]HeaderMsg, len(headers)),
	}
	for i, h := range headers {
		d.Headers[i] = HeaderMsg(h)
	}
	return d
}

// BlockHeaders returns the dump's headers.
func (d *Dump) BlockHeaders() []types.BlockHeader {
	out := make([]types.BlockHeader, len(d.Headers))
	for i, m := range d.Headers {
		out[i] = types.BlockHeader(m)
	}
	return out
}

// Encode serializes a dump to compressed CBOR.
func Encode(d *Dump) ([]byte, error) {
	raw, err := cbor.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode dump: %w", err)
	}
	return compress(raw), nil
}

// Decode parses a dump produced by Encode. Uncompressed CBOR is accepted too.
func Decode(data []byte) (*Dump, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress dump: %w", err)
	}

	var d Dump
	if err := cbor.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	if d.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported dump format %d", d.FormatVersion)
	}
	if len(d.Headers) > maxHeaders {
		return nil, fmt.Errorf("dump too large: %d headers", len(d.Headers))
	}
	if err := checkLinked(d.Headers); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteFile encodes headers for network into path.
func WriteFile(path, network string, headers []types.BlockHeader) error {
	data, err := Encode(NewDump(network, headers))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}

// ReadFile loads a dump from path.
func ReadFile(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return Decode(data)
}

// checkLinked verifies that every header names its predecessor in the dump.
func checkLinked(headers []HeaderMsg) error {
	for i := 1; i < len(headers); i++ {
		prev := types.BlockHeader(headers[i-1])
		if headers[i].PrevBlock != prev.Hash() {
			return fmt.Errorf("header %d does not extend header %d", i, i-1)
		}
	}
	return nil
}
