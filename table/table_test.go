package table

import (
	"bytes"
	"math"
	"testing"

	"github.com/grailbio/interop/runmetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableTestRunInfo = `<?xml version="1.0"?>
<RunInfo>
  <Run Id="r1" Number="1">
    <Reads>
      <Read Number="1" NumCycles="2" IsIndexedRead="N" />
    </Reads>
    <FlowcellLayout LaneCount="1" SurfaceCount="1" SwathCount="1" TileCount="1" SectionPerLane="1">
      <TileSet><TileNamingConvention>FourDigit</TileNamingConvention></TileSet>
    </FlowcellLayout>
    <ImageChannels>
      <Name>A</Name>
      <Name>C</Name>
    </ImageChannels>
  </Run>
</RunInfo>`

func le16(buf []byte, off int, v uint16) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

func le32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func leFloat(buf []byte, off int, v float32) {
	le32(buf, off, math.Float32bits(v))
}

func buildTileV2Bytes(lane, tile uint16) []byte {
	const recSize = 10
	buf := make([]byte, 2+4*recSize)
	buf[0] = 2
	buf[1] = recSize
	codes := []uint16{100, 101, 102, 103}
	values := []float32{500, 480, 1_000_000, 900_000}
	for i, code := range codes {
		off := 2 + i*recSize
		le16(buf, off, lane)
		le16(buf, off+2, tile)
		le16(buf, off+4, code)
		leFloat(buf, off+6, values[i])
	}
	return buf
}

func buildErrorV4Bytes(lane, tile uint16, rates map[uint16]float32) []byte {
	const recSize = 10
	buf := make([]byte, 2, 2+recSize*len(rates))
	buf[0] = 4
	buf[1] = recSize
	for cycle, rate := range rates {
		rec := make([]byte, recSize)
		le16(rec, 0, lane)
		le16(rec, 2, tile)
		le16(rec, 4, cycle)
		leFloat(rec, 6, rate)
		buf = append(buf, rec...)
	}
	return buf
}

func buildQV4Bytes(lane, tile uint16, cycles map[uint16][]int) []byte {
	const binCount = 50
	const recSize = 6 + 4*binCount
	buf := make([]byte, 2, 2+recSize*len(cycles))
	buf[0] = 4
	buf[1] = recSize
	for cycle, idxs := range cycles {
		rec := make([]byte, recSize)
		le16(rec, 0, lane)
		le16(rec, 2, tile)
		le16(rec, 4, cycle)
		for _, idx := range idxs {
			le32(rec, 6+4*idx, 100)
		}
		buf = append(buf, rec...)
	}
	return buf
}

func buildFacade(t *testing.T) *runmetrics.Facade {
	t.Helper()
	tileBytes := buildTileV2Bytes(1, 1101)
	errBytes := buildErrorV4Bytes(1, 1101, map[uint16]float32{1: 0.5, 2: 0.6})
	qBytes := buildQV4Bytes(1, 1101, map[uint16][]int{
		1: {0, 1, 2, 3, 4},
		2: {10, 11, 12, 13, 14},
	})
	f, err := runmetrics.Load(runmetrics.Sources{
		RunInfoXML: []byte(tableTestRunInfo),
		Tile:       bytes.NewReader(tileBytes),
		Error:      bytes.NewReader(errBytes),
		Q:          bytes.NewReader(qBytes),
	})
	require.NoError(t, err)
	return f
}

func TestBuildAssignsOneRowPerCycle(t *testing.T) {
	f := buildFacade(t)
	tb := Build(f)
	assert.Len(t, tb.Keys, 2)
}

func TestBuildPresentColumnsExcludeEmptyFamilies(t *testing.T) {
	f := buildFacade(t)
	tb := Build(f)
	_, hasDensity := tb.Offsets[DensityKPermm2]
	assert.True(t, hasDensity)
	_, hasP90 := tb.Offsets[P90]
	assert.False(t, hasP90, "Extraction family is empty, P90 column should be trimmed")
	_, hasContrast := tb.Offsets[MinimumContrast]
	assert.False(t, hasContrast, "Image family is empty, MinimumContrast should be trimmed")
}

func TestBuildFillsTileAndErrorValues(t *testing.T) {
	f := buildFacade(t)
	tb := Build(f)
	for row, key := range tb.Keys {
		c := decodeCycleKey(key)
		density := tb.Value(row, DensityKPermm2)
		require.NotNil(t, density)
		assert.InDelta(t, 500, density[0], 0.01)

		errRate := tb.Value(row, ErrorRate)
		require.NotNil(t, errRate)
		if c.Cycle == 1 {
			assert.InDelta(t, 0.5, errRate[0], 0.001)
		} else {
			assert.InDelta(t, 0.6, errRate[0], 0.001)
		}
	}
}

func TestBuildIDColumns(t *testing.T) {
	f := buildFacade(t)
	tb := Build(f)
	for row, key := range tb.Keys {
		c := decodeCycleKey(key)
		assert.Equal(t, float32(1), tb.Value(row, Lane)[0])
		assert.Equal(t, float32(1101), tb.Value(row, Tile)[0])
		assert.Equal(t, float32(1), tb.Value(row, Read)[0])
		assert.Equal(t, float32(c.Cycle), tb.Value(row, CycleWithinRead)[0])
	}
}

func TestColumnNameSubstitutions(t *testing.T) {
	assert.Equal(t, "%≥ Q20", PercentGreaterThanQ20.Name())
	assert.Equal(t, "Lane", Lane.Name())
	assert.Equal(t, "% Base", PercentBase.Name())
}
