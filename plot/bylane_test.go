package plot

import (
	"bytes"
	"testing"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/runmetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLaneFacade(t *testing.T) *runmetrics.Facade {
	t.Helper()
	tileBytes := buildTileV2Bytes([]tileEntry{
		{1, 1101, 500},
		{2, 1101, 700},
	})
	f, err := runmetrics.Load(runmetrics.Sources{
		RunInfoXML: []byte(plotTestRunInfo),
		Tile:       bytes.NewReader(tileBytes),
	})
	require.NoError(t, err)
	return f
}

func TestByLaneOnePerLane(t *testing.T) {
	f := buildLaneFacade(t)
	candles, err := ByLane(f, constants.Density, filter.NewOptions())
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, float64(1), candles[0].X)
	assert.InDelta(t, 500, candles[0].P50, 0.01)
	assert.Equal(t, float64(2), candles[1].X)
	assert.InDelta(t, 700, candles[1].P50, 0.01)
}

func TestByLaneRejectsCycleMetric(t *testing.T) {
	f := buildLaneFacade(t)
	_, err := ByLane(f, constants.ErrorRate, filter.NewOptions())
	assert.Error(t, err)
}
