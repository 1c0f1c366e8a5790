package metric

import (
	"bytes"
	"testing"

	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadIndexMetricsRoundTrip(t *testing.T) {
	set := New[IndexRecord]()
	set.Header = Header{Version: 1, RecordSize: 0}
	rec := IndexRecord{
		ID: ids.TileID{Lane: 1, Tile: 1101},
		Barcodes: []IndexBarcode{
			{IndexSequence: "ACGTACGT", SampleID: "Sample1", SampleProject: "ProjA", ClusterCount: 1000},
			{IndexSequence: "TTTTAAAA", SampleID: "Sample2", SampleProject: "ProjA", ClusterCount: 2000},
		},
	}
	require.NoError(t, set.Push(rec))

	var out bytes.Buffer
	require.NoError(t, WriteIndexMetrics(&out, set))

	roundTripped := New[IndexRecord]()
	require.NoError(t, ReadIndexMetrics(bytes.NewReader(out.Bytes()), roundTripped))
	require.Equal(t, 1, roundTripped.Len())
	got, ok := roundTripped.Get(rec.ID.Key())
	require.True(t, ok)
	assert.Equal(t, rec.Barcodes, got.Barcodes)
}

func TestReadIndexMetricsEmptyBarcodeList(t *testing.T) {
	set := New[IndexRecord]()
	set.Header = Header{Version: 1}
	require.NoError(t, set.Push(IndexRecord{ID: ids.TileID{Lane: 1, Tile: 1}}))

	var out bytes.Buffer
	require.NoError(t, WriteIndexMetrics(&out, set))

	roundTripped := New[IndexRecord]()
	require.NoError(t, ReadIndexMetrics(bytes.NewReader(out.Bytes()), roundTripped))
	got, ok := roundTripped.Get(ids.TileID{Lane: 1, Tile: 1}.Key())
	require.True(t, ok)
	assert.Empty(t, got.Barcodes)
}

func TestReadIndexMetricsBadVersion(t *testing.T) {
	data := []byte{9, 0}
	set := New[IndexRecord]()
	err := ReadIndexMetrics(bytes.NewReader(data), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadIndexMetricsTruncated(t *testing.T) {
	data := []byte{1, 0, 1, 0, 0, 0}
	set := New[IndexRecord]()
	err := ReadIndexMetrics(bytes.NewReader(data), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.IncompleteRecord))
}

func TestReadIndexMetricsMissingFile(t *testing.T) {
	set := New[IndexRecord]()
	err := ReadIndexMetrics(bytes.NewReader(nil), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.MissingFile))
}
