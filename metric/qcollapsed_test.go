package metric

import (
	"testing"

	"github.com/grailbio/interop/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQCollapsed(t *testing.T) {
	qset := New[QRecord]()
	bins := []QScoreBin{{0, 19, 15}, {20, 29, 25}, {30, 49, 35}}
	SetBins(qset, bins)
	require.NoError(t, qset.Push(QRecord{
		ID:   ids.CycleID{Lane: 1, Tile: 1101, Cycle: 1},
		Hist: []uint32{10, 20, 70},
	}))

	collapsed := BuildQCollapsed(qset)
	require.Equal(t, 1, collapsed.Len())
	rec, ok := collapsed.Get(ids.CycleID{Lane: 1, Tile: 1101, Cycle: 1}.Key())
	require.True(t, ok)
	assert.EqualValues(t, 90, rec.CountGreaterEqQ20)
	assert.EqualValues(t, 70, rec.CountGreaterEqQ30)
	assert.EqualValues(t, 100, rec.TotalCount)
	assert.Equal(t, 35, rec.MedianQ)
}
