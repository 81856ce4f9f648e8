package headerfile

import (
	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<30))
)

func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

// decompress returns data unchanged when it does not start with the zstd
// magic bytes.
func decompress(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xB5 || data[2] != 0x2F || data[3] != 0xFD {
		return data, nil
	}
	return zstdDecoder.DecodeAll(data, nil)
}
