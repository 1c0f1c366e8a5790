package metric

import (
	"io"

	"github.com/grailbio/interop/ids"
)

// ImageRecord holds per-channel min/max contrast values used to judge
// focus quality of the imaging optics.
type ImageRecord struct {
	ID          ids.CycleID
	MinContrast []uint16
	MaxContrast []uint16
}

func (r ImageRecord) Key() uint64      { return r.ID.Key() }
func (r ImageRecord) LaneNum() uint16  { return r.ID.Lane }
func (r ImageRecord) TileNum() uint32  { return r.ID.Tile }
func (r ImageRecord) CycleNum() uint16 { return r.ID.Cycle }

const imageFamily = "ImageMetrics"

// imageV1ChannelCount is the channel count implied by v1's fixed layout:
// the first image-metrics writer predates variable channel counts.
const imageV1ChannelCount = 2

func imageRecordSize(channelCount int) int {
	return cycleKeySize + 2*channelCount + 2*channelCount
}

// ReadImageMetrics parses an ImageMetricsOut.bin stream. Supported
// versions: 1 (fixed 2 channels), 2 (channelCount from RunInfo).
func ReadImageMetrics(r io.Reader, set *Set[ImageRecord], channelCount int) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(imageFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}

	effectiveChannels := channelCount
	switch prefix.Version {
	case 1:
		effectiveChannels = imageV1ChannelCount
	case 2:
		// uses the caller-supplied channelCount
	default:
		return errBadVersion(imageFamily, prefix.Version)
	}
	expected := imageRecordSize(effectiveChannels)
	if int(prefix.RecordSize) != expected {
		return errBadRecordSize(imageFamily, prefix.Version, int(prefix.RecordSize), expected)
	}

	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, expected)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(imageFamily, offset)
		}
		rec := ImageRecord{
			ID:          readCycleKey(buf),
			MinContrast: make([]uint16, effectiveChannels),
			MaxContrast: make([]uint16, effectiveChannels),
		}
		off := cycleKeySize
		for i := 0; i < effectiveChannels; i++ {
			rec.MinContrast[i] = littleEndian.Uint16(buf[off : off+2])
			off += 2
		}
		for i := 0; i < effectiveChannels; i++ {
			rec.MaxContrast[i] = littleEndian.Uint16(buf[off : off+2])
			off += 2
		}
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
		offset += int64(expected)
	}
}

// WriteImageMetrics serializes set back to the wire format.
func WriteImageMetrics(w io.Writer, set *Set[ImageRecord]) error {
	channelCount := 0
	if set.Len() > 0 {
		channelCount = len(set.Iter()[0].MinContrast)
	}
	recordSize := int(set.Header.RecordSize)
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		writeCycleKey(buf, rec.ID)
		off := cycleKeySize
		for i := 0; i < channelCount; i++ {
			littleEndian.PutUint16(buf[off:off+2], rec.MinContrast[i])
			off += 2
		}
		for i := 0; i < channelCount; i++ {
			littleEndian.PutUint16(buf[off:off+2], rec.MaxContrast[i])
			off += 2
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
