package metric

import (
	"io"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/ids"
)

// CorrectedIntensityRecord holds per-base called/corrected intensities,
// per-base called counts (including no-calls), and signal-to-noise.
type CorrectedIntensityRecord struct {
	ID                    ids.CycleID
	CalledIntensity       [constants.NumBases]uint16
	CorrectedIntensityAll [constants.NumBases]uint16
	CalledCount           [constants.NumBasesAndNC]uint32
	SignalToNoise         float32 // NaN if the writer omitted it (v2)
}

func (r CorrectedIntensityRecord) Key() uint64      { return r.ID.Key() }
func (r CorrectedIntensityRecord) LaneNum() uint16  { return r.ID.Lane }
func (r CorrectedIntensityRecord) TileNum() uint32  { return r.ID.Tile }
func (r CorrectedIntensityRecord) CycleNum() uint16 { return r.ID.Cycle }

// PercentBase returns the percentage of calls assigned to base (0..100),
// NaN if there were no calls at all.
func (r CorrectedIntensityRecord) PercentBase(base constants.DNABase) float32 {
	total := uint32(0)
	for _, c := range r.CalledCount {
		total += c
	}
	if total == 0 {
		return float32NaN()
	}
	idx := int(base) + 1 // NC=-1 is index 0 in CalledCount
	if idx < 0 || idx >= len(r.CalledCount) {
		return float32NaN()
	}
	return float32(r.CalledCount[idx]) / float32(total) * 100
}

// PercentNoCall returns the fraction of no-calls (0..100).
func (r CorrectedIntensityRecord) PercentNoCall() float32 {
	return r.PercentBase(constants.NC)
}

const (
	correctedIntensityFamily = "CorrectedIntMetrics"
	// v2: no signal-to-noise field.
	correctedIntensityV2Size = cycleKeySize + 2*constants.NumBases + 2*constants.NumBases + 4*constants.NumBasesAndNC
	// v3: adds a trailing f32 signal-to-noise.
	correctedIntensityV3Size = correctedIntensityV2Size + 4
)

func readCorrectedIntensityBody(buf []byte, hasSNR bool) CorrectedIntensityRecord {
	rec := CorrectedIntensityRecord{ID: readCycleKey(buf)}
	off := cycleKeySize
	for i := range rec.CalledIntensity {
		rec.CalledIntensity[i] = littleEndian.Uint16(buf[off : off+2])
		off += 2
	}
	for i := range rec.CorrectedIntensityAll {
		rec.CorrectedIntensityAll[i] = littleEndian.Uint16(buf[off : off+2])
		off += 2
	}
	for i := range rec.CalledCount {
		rec.CalledCount[i] = littleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	if hasSNR {
		rec.SignalToNoise = readFloat32(buf[off : off+4])
	} else {
		rec.SignalToNoise = float32NaN()
	}
	return rec
}

func writeCorrectedIntensityBody(buf []byte, rec CorrectedIntensityRecord, hasSNR bool) {
	writeCycleKey(buf, rec.ID)
	off := cycleKeySize
	for _, v := range rec.CalledIntensity {
		littleEndian.PutUint16(buf[off:off+2], v)
		off += 2
	}
	for _, v := range rec.CorrectedIntensityAll {
		littleEndian.PutUint16(buf[off:off+2], v)
		off += 2
	}
	for _, v := range rec.CalledCount {
		littleEndian.PutUint32(buf[off:off+4], v)
		off += 4
	}
	if hasSNR {
		writeFloat32(buf[off:off+4], rec.SignalToNoise)
	}
}

// ReadCorrectedIntensityMetrics parses a CorrectedIntMetricsOut.bin
// stream. Supported versions: 2, 3.
func ReadCorrectedIntensityMetrics(r io.Reader, set *Set[CorrectedIntensityRecord]) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(correctedIntensityFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}

	var expected int
	var hasSNR bool
	switch prefix.Version {
	case 2:
		expected, hasSNR = correctedIntensityV2Size, false
	case 3:
		expected, hasSNR = correctedIntensityV3Size, true
	default:
		return errBadVersion(correctedIntensityFamily, prefix.Version)
	}
	if int(prefix.RecordSize) != expected {
		return errBadRecordSize(correctedIntensityFamily, prefix.Version, int(prefix.RecordSize), expected)
	}

	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, expected)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(correctedIntensityFamily, offset)
		}
		if pushErr := set.Push(readCorrectedIntensityBody(buf, hasSNR)); pushErr != nil {
			return pushErr
		}
		offset += int64(expected)
	}
}

// WriteCorrectedIntensityMetrics serializes set back to the wire format.
func WriteCorrectedIntensityMetrics(w io.Writer, set *Set[CorrectedIntensityRecord]) error {
	hasSNR := set.Header.Version >= 3
	recordSize := int(set.Header.RecordSize)
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		writeCorrectedIntensityBody(buf, rec, hasSNR)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
