package encryption

import (
	"encoding/binary"
	"hash/crc32"
	"math/bits"
)

const (
	gzipOSUnix      = 3
	gzipTrailerSize = 8
	// fixedBlockLimit bounds the inputs tried as a single fixed Huffman block
	fixedBlockLimit = 512
)

// gzipHeader is a member header without name, comment or mtime, flagged as
// maximum compression on a unix host
var gzipHeader = [10]byte{0x1f, 0x8b, 8, 0, 0, 0, 0, 0, 2, gzipOSUnix}

// fixedMemberSize returns the length of the container fixedMember builds
func fixedMemberSize(data []byte) int {
	n := 3 + 7 // block header, end-of-block code
	for _, b := range data {
		if b < 144 {
			n += 8
		} else {
			n += 9
		}
	}
	return len(gzipHeader) + (n+7)/8 + gzipTrailerSize
}

// fixedMember encodes data as a gzip member holding one final deflate block
// of literals under the fixed Huffman code (RFC 1951, 3.2.6)
func fixedMember(data []byte) []byte {
	bw := bitWriter{out: make([]byte, 0, fixedMemberSize(data))}
	bw.out = append(bw.out, gzipHeader[:]...)

	bw.write(0b011, 3) // BFINAL, BTYPE=01
	for _, b := range data {
		if b < 144 {
			bw.writeCode(0x30+uint16(b), 8)
		} else {
			bw.writeCode(0x190+uint16(b-144), 9)
		}
	}
	bw.writeCode(0, 7) // end of block
	out := bw.flush()

	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(data))
	return binary.LittleEndian.AppendUint32(out, uint32(len(data)))
}

// bitWriter packs deflate bits least significant first
type bitWriter struct {
	out []byte
	acc uint32
	n   uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.acc |= v << w.n
	w.n += n
	for w.n >= 8 {
		w.out = append(w.out, byte(w.acc))
		w.acc >>= 8
		w.n -= 8
	}
}

// writeCode writes a Huffman code, stored most significant bit first
func (w *bitWriter) writeCode(code uint16, n uint) {
	w.write(uint32(bits.Reverse16(code)>>(16-n)), n)
}

func (w *bitWriter) flush() []byte {
	if w.n > 0 {
		w.out = append(w.out, byte(w.acc))
		w.acc, w.n = 0, 0
	}
	return w.out
}
