package metric

import (
	"bytes"
	"math"
	"testing"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCorrectedIntensityBytes(version uint8, lane, tile, cycle uint16, rec CorrectedIntensityRecord) []byte {
	hasSNR := version == 3
	size := correctedIntensityV2Size
	if hasSNR {
		size = correctedIntensityV3Size
	}
	buf := make([]byte, 2+size)
	buf[0] = version
	buf[1] = byte(size)
	rec.ID = ids.CycleID{Lane: lane, Tile: uint32(tile), Cycle: cycle}
	writeCorrectedIntensityBody(buf[2:], rec, hasSNR)
	return buf
}

func TestReadCorrectedIntensityMetricsRoundTripV3(t *testing.T) {
	rec := CorrectedIntensityRecord{
		CalledIntensity:       [constants.NumBases]uint16{10, 20, 30, 40},
		CorrectedIntensityAll: [constants.NumBases]uint16{11, 21, 31, 41},
		CalledCount:           [constants.NumBasesAndNC]uint32{1, 100, 200, 300, 400},
		SignalToNoise:         1.5,
	}
	data := buildCorrectedIntensityBytes(3, 1, 1101, 1, rec)

	set := New[CorrectedIntensityRecord]()
	require.NoError(t, ReadCorrectedIntensityMetrics(bytes.NewReader(data), set))
	require.Equal(t, 1, set.Len())
	got, ok := set.Get(ids.CycleID{Lane: 1, Tile: 1101, Cycle: 1}.Key())
	require.True(t, ok)
	assert.Equal(t, rec.CalledIntensity, got.CalledIntensity)
	assert.InDelta(t, 1.5, got.SignalToNoise, 1e-6)

	var out bytes.Buffer
	require.NoError(t, WriteCorrectedIntensityMetrics(&out, set))
	assert.Equal(t, data, out.Bytes())
}

func TestReadCorrectedIntensityMetricsV2NoSNR(t *testing.T) {
	rec := CorrectedIntensityRecord{
		CalledIntensity:       [constants.NumBases]uint16{1, 2, 3, 4},
		CorrectedIntensityAll: [constants.NumBases]uint16{1, 2, 3, 4},
		CalledCount:           [constants.NumBasesAndNC]uint32{0, 1, 2, 3, 4},
	}
	data := buildCorrectedIntensityBytes(2, 1, 1, 1, rec)

	set := New[CorrectedIntensityRecord]()
	require.NoError(t, ReadCorrectedIntensityMetrics(bytes.NewReader(data), set))
	got, ok := set.Get(ids.CycleID{Lane: 1, Tile: 1, Cycle: 1}.Key())
	require.True(t, ok)
	assert.True(t, math.IsNaN(float64(got.SignalToNoise)))
}

func TestCorrectedIntensityPercentBase(t *testing.T) {
	rec := CorrectedIntensityRecord{
		CalledCount: [constants.NumBasesAndNC]uint32{0, 25, 25, 25, 25},
	}
	assert.InDelta(t, 25.0, rec.PercentBase(constants.A), 1e-6)
	assert.InDelta(t, 0.0, rec.PercentNoCall(), 1e-6)

	empty := CorrectedIntensityRecord{}
	assert.True(t, math.IsNaN(float64(empty.PercentBase(constants.A))))
}

func TestReadCorrectedIntensityMetricsBadVersion(t *testing.T) {
	data := []byte{9, 0}
	set := New[CorrectedIntensityRecord]()
	err := ReadCorrectedIntensityMetrics(bytes.NewReader(data), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.BadFormat))
}

func TestReadCorrectedIntensityMetricsMissingFile(t *testing.T) {
	set := New[CorrectedIntensityRecord]()
	err := ReadCorrectedIntensityMetrics(bytes.NewReader(nil), set)
	require.Error(t, err)
	assert.True(t, interoperr.Is(err, interoperr.MissingFile))
}
