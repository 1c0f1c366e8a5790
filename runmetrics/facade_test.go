package runmetrics

import (
	"bytes"
	"math"
	"testing"

	"github.com/grailbio/interop/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunInfo = `<?xml version="1.0"?>
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

func buildErrorBytesForTest(lane, tile, cycle uint16, rate float32) []byte {
	// Mirrors metric.buildErrorV3Bytes without exporting it across packages.
	buf := make([]byte, 2+48)
	buf[0] = 3
	buf[1] = 48
	le := func(off int, v uint16) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
	}
	le(2, lane)
	le(4, tile)
	le(6, cycle)
	bits := math.Float32bits(rate)
	buf[8] = byte(bits)
	buf[9] = byte(bits >> 8)
	buf[10] = byte(bits >> 16)
	buf[11] = byte(bits >> 24)
	return buf
}

func TestLoadMinimalRun(t *testing.T) {
	errData := buildErrorBytesForTest(1, 1101, 1, 0.1)
	src := Sources{
		RunInfoXML: []byte(testRunInfo),
		Error:      bytes.NewReader(errData),
	}
	f, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, constants.FourDigit, f.TileNamingMethod)
	assert.Equal(t, 1, f.Error.Len())
	assert.NotNil(t, f.QByLane)
	assert.NotNil(t, f.QCollapsed)
}

func TestLoadMissingRunInfoFails(t *testing.T) {
	_, err := Load(Sources{})
	require.Error(t, err)
}
