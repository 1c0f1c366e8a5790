package metric

import (
	"io"

	"github.com/grailbio/interop/ids"
)

// ErrorRecord is one (lane, tile, cycle) error-rate observation.
type ErrorRecord struct {
	ID        ids.CycleID
	ErrorRate float32 // as stored in the record
}

func (r ErrorRecord) Key() uint64      { return r.ID.Key() }
func (r ErrorRecord) LaneNum() uint16  { return r.ID.Lane }
func (r ErrorRecord) TileNum() uint32  { return r.ID.Tile }
func (r ErrorRecord) CycleNum() uint16 { return r.ID.Cycle }

// ErrorHeader has no family-specific header fields beyond the common prefix.
type ErrorHeader struct {
	Header
}

const (
	errorFamily = "ErrorMetrics"
	// errorV3Size matches spec.md §8 scenario 1 literally: a v3 file
	// declares record size 48 even though only 10 bytes (key + rate) are
	// meaningful; the rest is reserved/ignored, as the real instrument
	// software's error-metrics writer reserves space for future fields.
	errorV3Size = 48
	errorV4Size = cycleKeySize + 4
)

// ReadErrorMetrics parses an ErrorMetricsOut.bin stream into set,
// appending records in file order. Supported versions: 3, 4.
func ReadErrorMetrics(r io.Reader, set *Set[ErrorRecord]) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(errorFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}

	var expected int
	switch prefix.Version {
	case 3:
		expected = errorV3Size
	case 4:
		expected = errorV4Size
	default:
		return errBadVersion(errorFamily, prefix.Version)
	}
	if int(prefix.RecordSize) != expected {
		return errBadRecordSize(errorFamily, prefix.Version, int(prefix.RecordSize), expected)
	}

	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, expected)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(errorFamily, offset)
		}
		rec := ErrorRecord{
			ID:        readCycleKey(buf),
			ErrorRate: readFloat32(buf[cycleKeySize : cycleKeySize+4]),
		}
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
		offset += int64(expected)
	}
}

// WriteErrorMetrics serializes set back to the wire format for its
// recorded version, byte-for-byte reproducing what ReadErrorMetrics
// would have consumed (spec.md §4.1 round-trip contract).
func WriteErrorMetrics(w io.Writer, set *Set[ErrorRecord]) error {
	recordSize := int(set.Header.RecordSize)
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		for i := range buf {
			buf[i] = 0
		}
		writeCycleKey(buf, rec.ID)
		writeFloat32(buf[cycleKeySize:cycleKeySize+4], rec.ErrorRate)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
