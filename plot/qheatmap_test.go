package plot

import (
	"bytes"
	"testing"

	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/runmetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQHeatmapNormalizesRowMax(t *testing.T) {
	qBytes := buildQV4Bytes([]qEntry{
		// Eight non-zero columns: more than 7 means unbinned, so Load
		// needs no RunParameters to synthesize legacy bins.
		{1, 1101, 1, []int{10, 20, 30, 31, 32, 33, 34, 35}},
	})
	f, err := runmetrics.Load(runmetrics.Sources{
		RunInfoXML: []byte(plotTestRunInfo),
		Q:          bytes.NewReader(qBytes),
	})
	require.NoError(t, err)

	hm := BuildQHeatmap(f, filter.NewOptions())
	require.Len(t, hm.Cycles, 1)
	assert.Equal(t, uint16(1), hm.Cycles[0])
	assert.Equal(t, 49, hm.QMax)
	assert.InDelta(t, 100, hm.Values[0][10], 0.01)
	assert.InDelta(t, 100, hm.Values[0][20], 0.01)
	assert.InDelta(t, 0, hm.Values[0][0], 0.01)
}
