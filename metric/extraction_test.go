package metric

import (
	"bytes"
	"testing"
	"time"

	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractionTestChannels = 4

func buildExtractionV2Bytes(lane, tile, cycle uint16, p90 []uint16, focus []float32, ts time.Time) []byte {
	size := extractionRecordSize(extractionTestChannels)
	buf := make([]byte, 2+size)
	buf[0] = 2
	buf[1] = byte(size)
	rec := buf[2:]
	writeCycleKey(rec, ids.CycleID{Lane: lane, Tile: uint32(tile), Cycle: cycle})
	off := cycleKeySize
	for _, v := range p90 {
		littleEndian.PutUint16(rec[off:off+2], v)
		off += 2
	}
	for _, v := range focus {
		writeFloat32(rec[off:off+4], v)
		off += 4
	}
	littleEndian.PutUint64(rec[off:off+8], timeToCSharpTicks(ts))
	return buf
}

func TestReadExtractionMetricsRoundTrip(t *testing.T) {
	ts := time.Date(2020, 3, 15, 12, 30, 0, 0, time.UTC)
	p90 := []uint16{100, 200, 300, 400}
	focus := []float32{1.1, 2.2, 3.3, 4.4}
	data := buildExtractionV2Bytes(1, 1101, 1, p90, focus, ts)

	set := New[ExtractionRecord]()
	require.NoError(t, ReadExtractionMetrics(bytes.NewReader(data), set, extractionTestChannels))
	require.Equal(t, 1, set.Len())
	rec, ok := set.Get(ids.CycleID{Lane: 1, Tile: 1101, Cycle: 1}.Key())
	require.True(t, ok)
	assert.Equal(t, p90, rec.P90)
	assert.Equal(t, focus, rec.FocusScore)
	assert.True(t, ts.Equal(rec.Timestamp))

	var out bytes.Buffer
	require.NoError(t, WriteExtractionMetrics(&out, set, extractionTestChannels))
	assert.Equal(t, data, out.Bytes())
}

func TestReadExtractionMetricsBadVersion(t *testing.T) {
	data := []byte{1, 30}
	set := New[ExtractionRecord]()
	err := ReadExtractionMetrics(bytes.NewReader(data), set, extractionTestChannels)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadExtractionMetricsBadRecordSize(t *testing.T) {
	data := []byte{2, 5}
	set := New[ExtractionRecord]()
	err := ReadExtractionMetrics(bytes.NewReader(data), set, extractionTestChannels)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadExtractionMetricsTruncated(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p90 := []uint16{1, 2, 3, 4}
	focus := []float32{0.1, 0.2, 0.3, 0.4}
	full := buildExtractionV2Bytes(1, 1, 1, p90, focus, ts)
	second := buildExtractionV2Bytes(1, 1, 2, p90, focus, ts)[2:]
	full = append(full, second...)
	size := extractionRecordSize(extractionTestChannels)
	truncated := full[:2+size+size/2]

	set := New[ExtractionRecord]()
	err := ReadExtractionMetrics(bytes.NewReader(truncated), set, extractionTestChannels)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.IncompleteRecord))
	assert.Equal(t, 1, set.Len())
}

func TestReadExtractionMetricsMissingFile(t *testing.T) {
	set := New[ExtractionRecord]()
	err := ReadExtractionMetrics(bytes.NewReader(nil), set, extractionTestChannels)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.MissingFile))
}
