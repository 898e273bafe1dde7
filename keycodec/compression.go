package keycodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how value payloads are compressed. The choice is
// recorded in the first payload byte, so values written with different
// settings can be read by any converter.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZSTD Compression = 2
)

// minCompressSize is the smallest body worth compressing.
const minCompressSize = 64

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("keycodec: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

var errCorruptPayload = errors.New("corrupt value payload")

// compressPayload returns [compression byte][body']. Small or incompressible
// bodies are stored uncompressed.
func compressPayload(body []byte, c Compression) ([]byte, error) {
	if c == CompressionNone || len(body) < minCompressSize {
		return append([]byte{byte(CompressionNone)}, body...), nil
	}

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 || n >= len(body) {
			break
		}
		out := make([]byte, 0, 1+binary.MaxVarintLen64+n)
		out = append(out, byte(CompressionLZ4))
		out = binary.AppendUvarint(out, uint64(len(body)))
		return append(out, buf[:n]...), nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		out := enc.EncodeAll(body, []byte{byte(CompressionZSTD)})
		zstdEncoderPool.Put(enc)
		if len(out)-1 < len(body) {
			return out, nil
		}
	default:
		return nil, fmt.Errorf("keycodec: unknown compression %d", c)
	}
	return append([]byte{byte(CompressionNone)}, body...), nil
}

// decompressPayload reverses compressPayload.
func decompressPayload(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	data := payload[1:]
	switch Compression(payload[0]) {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		size, w := binary.Uvarint(data)
		if w <= 0 {
			return nil, errCorruptPayload
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data[w:], out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptPayload, err)
		}
		if uint64(n) != size {
			return nil, errCorruptPayload
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptPayload, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compression byte %d", errCorruptPayload, payload[0])
	}
}
