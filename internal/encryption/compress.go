package encryption

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

const (
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
	CompressionLzma = "lzma"
)

// GzipCompressor produces standard gzip containers (header, deflate stream,
// CRC-32 and size trailer). It is the only interoperable token suite.
//
// Containers carry no name or modification time and use zlib's level 9
// header. Short inputs are emitted as a single fixed Huffman block whenever
// that is no larger than the library output, matching zlib for them.
type GzipCompressor struct {
	writers sync.Pool
}

// NewGzipCompressor creates a gzip stage at best compression
func NewGzipCompressor() *GzipCompressor {
	g := &GzipCompressor{}
	g.writers.New = func() interface{} {
		w, err := gzip.NewWriterLevel(io.Discard, gzip.BestCompression)
		if err != nil {
			panic(err)
		}
		return w
	}
	return g
}

// Name returns the registry name
func (g *GzipCompressor) Name() string {
	return CompressionGzip
}

// Compress wraps data in a gzip container
func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	w := g.writers.Get().(*gzip.Writer)
	defer g.writers.Put(w)
	w.Reset(buf)
	w.ModTime = time.Unix(0, 0)
	w.OS = gzipOSUnix

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}

	if len(data) <= fixedBlockLimit && fixedMemberSize(data) <= buf.Len() {
		return fixedMember(data), nil
	}
	return detach(buf), nil
}

// Decompress validates the gzip magic, checksum and size trailer
func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewCorruptData("invalid gzip header", err)
	}
	defer r.Close()

	buf := getBuffer()
	defer putBuffer(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, apperrors.NewCorruptData("gzip stream failed validation", err)
	}
	return detach(buf), nil
}

// ZstdCompressor uses the zstd frame format. Tokens made with it are only
// readable by a pipeline configured for zstd.
type ZstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstdCompressor creates a zstd stage tuned for small payloads
func NewZstdCompressor() (*ZstdCompressor, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderCRC(true),
		// empty input must still produce a frame, or it decrypts as EmptyResult
		zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompressor{enc: enc, dec: dec}, nil
}

// Name returns the registry name
func (z *ZstdCompressor) Name() string {
	return CompressionZstd
}

// Compress encodes data as a single zstd frame
func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return z.enc.EncodeAll(data, nil), nil
}

// Decompress decodes a zstd frame, checking its content checksum
func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, apperrors.NewCorruptData("zstd frame failed validation", err)
	}
	return out, nil
}

// LzmaCompressor uses the classic .lzma container. The format has no
// checksum, so corrupted input is detected only when the stream is malformed.
type LzmaCompressor struct{}

// NewLzmaCompressor creates an lzma stage
func NewLzmaCompressor() *LzmaCompressor {
	return &LzmaCompressor{}
}

// Name returns the registry name
func (l *LzmaCompressor) Name() string {
	return CompressionLzma
}

// Compress encodes data as an lzma stream terminated by an end marker
func (l *LzmaCompressor) Compress(data []byte) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	w, err := lzma.NewWriter(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create lzma writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma close: %w", err)
	}
	return detach(buf), nil
}

// Decompress decodes an lzma stream
func (l *LzmaCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewCorruptData("invalid lzma header", err)
	}

	buf := getBuffer()
	defer putBuffer(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, apperrors.NewCorruptData("lzma stream failed validation", err)
	}
	return detach(buf), nil
}
