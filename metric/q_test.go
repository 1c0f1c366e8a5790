package metric

import (
	"bytes"
	"testing"

	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQV4Bytes(lane, tile, cycle uint16, hist [qRawBinCount]uint32) []byte {
	size := qRecordSize(qRawBinCount)
	buf := make([]byte, 2+size)
	buf[0] = 4
	buf[1] = byte(size)
	rec := buf[2:]
	writeCycleKey(rec, ids.CycleID{Lane: lane, Tile: uint32(tile), Cycle: cycle})
	off := cycleKeySize
	for _, v := range hist {
		littleEndian.PutUint32(rec[off:off+4], v)
		off += 4
	}
	return buf
}

func TestReadQMetricsV4RawRoundTrip(t *testing.T) {
	var hist [qRawBinCount]uint32
	hist[10] = 5
	hist[30] = 7
	data := buildQV4Bytes(1, 1101, 1, hist)

	set := New[QRecord]()
	require.NoError(t, ReadQMetrics(bytes.NewReader(data), set))
	require.Equal(t, 1, set.Len())
	assert.Nil(t, Bins(set))
	rec, ok := set.Get(ids.CycleID{Lane: 1, Tile: 1101, Cycle: 1}.Key())
	require.True(t, ok)
	assert.EqualValues(t, 5, rec.Hist[10])

	var out bytes.Buffer
	require.NoError(t, WriteQMetrics(&out, set))
	assert.Equal(t, data, out.Bytes())
}

func TestReadQMetricsV6CompressedRoundTrip(t *testing.T) {
	bins := []QScoreBin{{0, 9, 7}, {10, 29, 20}, {30, 49, 36}}
	size := qRecordSize(len(bins))
	header := []byte{6, byte(size), byte(len(bins))}
	for _, b := range bins {
		header = append(header, b.Lower, b.Upper, b.Value)
	}
	rec := make([]byte, size)
	writeCycleKey(rec, ids.CycleID{Lane: 2, Tile: 2001, Cycle: 3})
	littleEndian.PutUint32(rec[cycleKeySize:cycleKeySize+4], 100)
	littleEndian.PutUint32(rec[cycleKeySize+4:cycleKeySize+8], 200)
	littleEndian.PutUint32(rec[cycleKeySize+8:cycleKeySize+12], 300)
	data := append(header, rec...)

	set := New[QRecord]()
	require.NoError(t, ReadQMetrics(bytes.NewReader(data), set))
	require.Equal(t, bins, Bins(set))
	require.Equal(t, 1, set.Len())

	var out bytes.Buffer
	require.NoError(t, WriteQMetrics(&out, set))
	assert.Equal(t, data, out.Bytes())
}

func TestReadQMetricsBadVersion(t *testing.T) {
	data := []byte{9, 0}
	set := New[QRecord]()
	err := ReadQMetrics(bytes.NewReader(data), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadQMetricsAmbiguous50BinHeaderIsBadFormat(t *testing.T) {
	// A version 6 header that declares exactly 50 bins is indistinguishable
	// from a raw (uncompressed) histogram's natural width.
	bins := make([]QScoreBin, qRawBinCount)
	for i := range bins {
		bins[i] = QScoreBin{Lower: uint8(i), Upper: uint8(i), Value: uint8(i)}
	}
	header := []byte{6, 0, byte(len(bins))}
	for _, b := range bins {
		header = append(header, b.Lower, b.Upper, b.Value)
	}

	set := New[QRecord]()
	err := ReadQMetrics(bytes.NewReader(header), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadQMetricsMissingFile(t *testing.T) {
	set := New[QRecord]()
	err := ReadQMetrics(bytes.NewReader(nil), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.MissingFile))
}
