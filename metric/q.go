package metric

import (
	"io"

	"github.com/grailbio/interop/ids"
)

// QScoreBin describes one histogram column: the inclusive [Lower, Upper]
// Q-value range it covers and the representative Q-value used when the
// column is treated as a single point (percentile thresholds, heatmap
// remapping).
type QScoreBin struct {
	Lower uint8
	Upper uint8
	Value uint8
}

// QRecord holds a Q-score histogram for one (tile, cycle). Hist is
// indexed by bin position; when the set's header has no declared bins
// (raw v4 files) there are exactly 50 columns, one per Q-value.
type QRecord struct {
	ID   ids.CycleID
	Hist []uint32
}

func (r QRecord) Key() uint64      { return r.ID.Key() }
func (r QRecord) LaneNum() uint16  { return r.ID.Lane }
func (r QRecord) TileNum() uint32  { return r.ID.Tile }
func (r QRecord) CycleNum() uint16 { return r.ID.Cycle }

// Bins returns set's header bin table, or nil if the set has none (raw
// v4 files, or a set awaiting legacy bin synthesis).
func Bins(set *Set[QRecord]) []QScoreBin {
	bins, _ := set.Extra.([]QScoreBin)
	return bins
}

// SetBins installs a header bin table, used by legacy bin synthesis.
func SetBins(set *Set[QRecord], bins []QScoreBin) {
	set.Extra = bins
}

const qFamily = "QMetrics"

// qRawBinCount is the column count of an uncompressed (legacy) Q
// histogram: one column per Q-value from 0 to 49.
const qRawBinCount = 50

func qRecordSize(binCount int) int {
	return cycleKeySize + 4*binCount
}

// ReadQMetrics parses a QMetricsOut.bin stream. Supported versions: 4
// (raw 50-column histogram, no header bins), 5, 6, 7 (header declares
// a compressed bin table: count byte then count*(lower, upper, value)
// triples). set.Bins is populated from the header for versions 5-7 and
// left nil for version 4 (callers run legacy bin synthesis instead).
func ReadQMetrics(r io.Reader, set *Set[QRecord]) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(qFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}

	var bins []QScoreBin
	binCount := qRawBinCount
	offset := int64(2)
	switch prefix.Version {
	case 4:
		// no header extension; raw 50-column histogram
	case 5, 6, 7:
		var countBuf [1]byte
		if _, err := io.ReadFull(r, countBuf[:]); err != nil {
			return errIncomplete(qFamily, offset)
		}
		offset++
		n := int(countBuf[0])
		if n == qRawBinCount {
			// A header declaring exactly 50 bins is indistinguishable from
			// a raw (uncompressed) histogram's natural width and is
			// rejected rather than silently treated as either (spec's
			// compressed-Q ambiguity: bin-metadata-present-but-50-columns
			// is BadFormat).
			return errBadFormat(qFamily, "header declares 50 bins, ambiguous with raw width")
		}
		bins = make([]QScoreBin, n)
		binBuf := make([]byte, 3*n)
		if n > 0 {
			if _, err := io.ReadFull(r, binBuf); err != nil {
				return errIncomplete(qFamily, offset)
			}
		}
		offset += int64(3 * n)
		for i := 0; i < n; i++ {
			bins[i] = QScoreBin{Lower: binBuf[3*i], Upper: binBuf[3*i+1], Value: binBuf[3*i+2]}
		}
		binCount = n
	default:
		return errBadVersion(qFamily, prefix.Version)
	}

	expected := qRecordSize(binCount)
	if int(prefix.RecordSize) != expected {
		return errBadRecordSize(qFamily, prefix.Version, int(prefix.RecordSize), expected)
	}
	set.Extra = bins

	for {
		buf, err := readRecordBytes(r, expected)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(qFamily, offset)
		}
		rec := QRecord{ID: readCycleKey(buf), Hist: make([]uint32, binCount)}
		off := cycleKeySize
		for i := 0; i < binCount; i++ {
			rec.Hist[i] = littleEndian.Uint32(buf[off : off+4])
			off += 4
		}
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
		offset += int64(expected)
	}
}

// WriteQMetrics serializes set back to the wire format, including the
// header bin table for versions 5-7.
func WriteQMetrics(w io.Writer, set *Set[QRecord]) error {
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	if set.Header.Version >= 5 {
		bins, _ := set.Extra.([]QScoreBin)
		if _, err := w.Write([]byte{byte(len(bins))}); err != nil {
			return err
		}
		binBuf := make([]byte, 3*len(bins))
		for i, b := range bins {
			binBuf[3*i] = b.Lower
			binBuf[3*i+1] = b.Upper
			binBuf[3*i+2] = b.Value
		}
		if _, err := w.Write(binBuf); err != nil {
			return err
		}
	}
	recordSize := int(set.Header.RecordSize)
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		writeCycleKey(buf, rec.ID)
		off := cycleKeySize
		for _, v := range rec.Hist {
			littleEndian.PutUint32(buf[off:off+4], v)
			off += 4
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
