package metric

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/grailbio/interop/interoperr"
	"github.com/klauspost/compress/gzip"
)

func errDuplicateKey(key uint64) error {
	return interoperr.New(interoperr.BadFormat, fmt.Sprintf("duplicate record key %#x", key))
}

// ErrMissingFile is returned by a family Read function when the stream
// itself reports there is nothing to read (the stream ends before the
// version/record-size prefix).
func ErrMissingFile(context string) error {
	return interoperr.New(interoperr.MissingFile, context)
}

func errBadVersion(family string, version uint8) error {
	return interoperr.New(interoperr.BadFormat, fmt.Sprintf("%s: unsupported version %d", family, version))
}

func errBadFormat(family, reason string) error {
	return interoperr.New(interoperr.BadFormat, fmt.Sprintf("%s: %s", family, reason))
}

func errBadRecordSize(family string, version uint8, declared, expected int) error {
	return interoperr.New(interoperr.BadFormat,
		fmt.Sprintf("%s v%d: header declares record size %d, expected %d", family, version, declared, expected))
}

func errIncomplete(family string, offset int64) error {
	return interoperr.New(interoperr.IncompleteRecord, fmt.Sprintf("%s: truncated at byte offset %d", family, offset))
}

// Prefix is the 2-byte version/record-size prefix every InterOp file
// begins with (spec.md §4.1).
type Prefix struct {
	Version    uint8
	RecordSize uint8
}

// PrepareStream peeks the first two bytes of r; if they are the gzip
// magic (0x1f 0x8b), it returns a gzip.Reader wrapping r, otherwise it
// returns a reader equivalent to the original stream (peeked bytes
// un-consumed). Some instrument software versions write InterOp files
// gzip-compressed; this mirrors encoding/bam/gindex.go's own use of
// klauspost/compress/gzip for its sibling .gbai format. Every family Read function
// calls this before ReadPrefix.
func PrepareStream(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return br, nil
		}
		return nil, err
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return gz, nil
	}
	return br, nil
}

// ReadPrefix reads the 1-byte version and 1-byte record-size that begin
// every InterOp file.
func ReadPrefix(r io.Reader) (Prefix, error) {
	var buf [2]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if n == 0 {
			return Prefix{}, io.EOF
		}
		return Prefix{}, err
	}
	return Prefix{Version: buf[0], RecordSize: buf[1]}, nil
}

// readRecordBytes reads exactly size bytes for one record. If the stream
// ends before size bytes are available, it returns the partial bytes
// read and io.ErrUnexpectedEOF so the caller can stop cleanly and keep
// prior records (spec.md §4.1 tolerance policy).
func readRecordBytes(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, io.EOF
		}
		return buf[:n], io.ErrUnexpectedEOF
	}
	return buf, nil
}

// littleEndian is used throughout the family parsers; named for
// readability at call sites (binary.LittleEndian.Uint32(...) reads
// awkwardly inline in a 12-field record parser).
var littleEndian = binary.LittleEndian

func readFloat32(b []byte) float32 {
	return math.Float32frombits(littleEndian.Uint32(b))
}

func writeFloat32(b []byte, v float32) {
	littleEndian.PutUint32(b, math.Float32bits(v))
}

// float32NaN returns a canonical float32 NaN, used as the sentinel for
// fields some older writers omit (spec.md §9 open question: absence
// means NaN, not zero).
func float32NaN() float32 {
	return float32(math.NaN())
}

// bytesReader is a tiny convenience used by round-trip tests to replay a
// family's serialized output back through its own parser.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
