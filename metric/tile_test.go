package metric

import (
	"bytes"
	"testing"

	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTileV2Record(buf []byte, lane, tile uint16, code uint16, value float32) []byte {
	rec := make([]byte, tileV2RecordSize)
	writeTileKey(rec, ids.TileID{Lane: lane, Tile: uint32(tile)})
	littleEndian.PutUint16(rec[tileKeySize:tileKeySize+2], code)
	writeFloat32(rec[tileKeySize+2:tileKeySize+6], value)
	return append(buf, rec...)
}

func TestReadTileMetricsV2Merge(t *testing.T) {
	data := []byte{2, byte(tileV2RecordSize)}
	data = appendTileV2Record(data, 1, 1101, tileCodeClusterDensity, 1000)
	data = appendTileV2Record(data, 1, 1101, tileCodeClusterCount, 500000)
	data = appendTileV2Record(data, 1, 1101, tileCodePercentAlignedBase+1, 95.5)
	data = appendTileV2Record(data, 1, 1101, tileCodePercentPhasingBase+1, 0.1)

	set := New[TileRecord]()
	require.NoError(t, ReadTileMetrics(bytes.NewReader(data), set))
	require.Equal(t, 1, set.Len())
	rec, ok := set.Get(ids.TileID{Lane: 1, Tile: 1101}.Key())
	require.True(t, ok)
	assert.InDelta(t, 1000, rec.ClusterDensity, 1e-3)
	assert.InDelta(t, 500000, rec.ClusterCount, 1e-3)
	require.Len(t, rec.Reads, 1)
	assert.EqualValues(t, 1, rec.Reads[0].Read)
	assert.InDelta(t, 95.5, rec.Reads[0].PercentAligned, 1e-3)
	assert.InDelta(t, 0.1, rec.Reads[0].PercentPhasing, 1e-3)
}

func TestReadTileMetricsV3RoundTrip(t *testing.T) {
	numReads := 2
	recordSize := tileV3FixedSize + numReads*tileV3ReadStatSize
	buf := make([]byte, recordSize)
	writeTileKey(buf, ids.TileID{Lane: 2, Tile: 2001})
	off := tileKeySize
	writeFloat32(buf[off:off+4], 1200)
	off += 4
	writeFloat32(buf[off:off+4], 1100)
	off += 4
	writeFloat32(buf[off:off+4], 600000)
	off += 4
	writeFloat32(buf[off:off+4], 590000)
	off += 4
	for i := 0; i < numReads; i++ {
		littleEndian.PutUint16(buf[off:off+2], uint16(i+1))
		off += 2
		writeFloat32(buf[off:off+4], 96.0)
		off += 4
		writeFloat32(buf[off:off+4], 0.2)
		off += 4
		writeFloat32(buf[off:off+4], 0.1)
		off += 4
	}
	data := append([]byte{3, byte(recordSize)}, buf...)

	set := New[TileRecord]()
	require.NoError(t, ReadTileMetrics(bytes.NewReader(data), set))
	require.Equal(t, 1, set.Len())
	rec, ok := set.Get(ids.TileID{Lane: 2, Tile: 2001}.Key())
	require.True(t, ok)
	require.Len(t, rec.Reads, 2)

	var out bytes.Buffer
	require.NoError(t, WriteTileMetrics(&out, set))
	assert.Equal(t, data, out.Bytes())
}

func TestReadTileMetricsBadVersion(t *testing.T) {
	data := []byte{9, 0}
	set := New[TileRecord]()
	err := ReadTileMetrics(bytes.NewReader(data), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadTileMetricsMissingFile(t *testing.T) {
	set := New[TileRecord]()
	err := ReadTileMetrics(bytes.NewReader(nil), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.MissingFile))
}
