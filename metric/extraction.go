package metric

import (
	"io"
	"time"

	"github.com/grailbio/interop/ids"
)

// ExtractionRecord holds per-channel P90 intensity and focus score plus
// the UTC timestamp of the extraction.
type ExtractionRecord struct {
	ID          ids.CycleID
	P90         []uint16
	FocusScore  []float32
	Timestamp   time.Time
}

func (r ExtractionRecord) Key() uint64      { return r.ID.Key() }
func (r ExtractionRecord) LaneNum() uint16  { return r.ID.Lane }
func (r ExtractionRecord) TileNum() uint32  { return r.ID.Tile }
func (r ExtractionRecord) CycleNum() uint16 { return r.ID.Cycle }

const extractionFamily = "ExtractionMetrics"

// ExtractionHeader carries the channel count declared in the file header.
type ExtractionHeader struct {
	Header
	ChannelCount int
}

func extractionRecordSize(channelCount int) int {
	return cycleKeySize + 2*channelCount + 4*channelCount + 8
}

// ReadExtractionMetrics parses an ExtractionMetricsOut.bin stream.
// Supported version: 2. channelCount must be supplied by the caller
// (derived from RunInfo's channel list) since the v2 header does not
// declare it directly; see run.Info.Channels.
func ReadExtractionMetrics(r io.Reader, set *Set[ExtractionRecord], channelCount int) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(extractionFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}
	if prefix.Version != 2 {
		return errBadVersion(extractionFamily, prefix.Version)
	}
	expected := extractionRecordSize(channelCount)
	if int(prefix.RecordSize) != expected {
		return errBadRecordSize(extractionFamily, prefix.Version, int(prefix.RecordSize), expected)
	}

	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, expected)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(extractionFamily, offset)
		}
		rec := ExtractionRecord{
			ID:         readCycleKey(buf),
			P90:        make([]uint16, channelCount),
			FocusScore: make([]float32, channelCount),
		}
		off := cycleKeySize
		for i := 0; i < channelCount; i++ {
			rec.P90[i] = littleEndian.Uint16(buf[off : off+2])
			off += 2
		}
		for i := 0; i < channelCount; i++ {
			rec.FocusScore[i] = readFloat32(buf[off : off+4])
			off += 4
		}
		ticks := littleEndian.Uint64(buf[off : off+8])
		rec.Timestamp = csharpTicksToTime(ticks)
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
		offset += int64(expected)
	}
}

// WriteExtractionMetrics serializes set back to the wire format.
func WriteExtractionMetrics(w io.Writer, set *Set[ExtractionRecord], channelCount int) error {
	recordSize := int(set.Header.RecordSize)
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		writeCycleKey(buf, rec.ID)
		off := cycleKeySize
		for i := 0; i < channelCount; i++ {
			littleEndian.PutUint16(buf[off:off+2], rec.P90[i])
			off += 2
		}
		for i := 0; i < channelCount; i++ {
			writeFloat32(buf[off:off+4], rec.FocusScore[i])
			off += 4
		}
		littleEndian.PutUint64(buf[off:off+8], timeToCSharpTicks(rec.Timestamp))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// csharpEpochTicks is the number of 100ns ticks between the .NET/C#
// DateTime epoch (0001-01-01) and the Unix epoch (1970-01-01), matching
// the original writer's DateTime.ToBinary()-derived timestamp encoding.
const csharpEpochTicks = 621355968000000000

func csharpTicksToTime(ticks uint64) time.Time {
	unixTicks := int64(ticks) - csharpEpochTicks
	return time.Unix(0, unixTicks*100).UTC()
}

func timeToCSharpTicks(t time.Time) uint64 {
	unixNanos := t.UnixNano()
	return uint64(unixNanos/100 + csharpEpochTicks)
}
