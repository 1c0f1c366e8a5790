package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricTypeString(t *testing.T) {
	assert.Equal(t, "% >=Q30", PercentQ30.String())
	assert.Equal(t, "!!!!BAD!!!!", UnknownMetricType.String())
}

func TestMetricTypeGroup(t *testing.T) {
	assert.Equal(t, Q, PercentQ30.Group())
	assert.Equal(t, Tile, Density.Group())
	assert.Equal(t, CorrectedInt, SignalToNoise.Group())
}

func TestColorForChannel(t *testing.T) {
	assert.Equal(t, Red, ColorForChannel(0))
	assert.Equal(t, Green, ColorForChannel(1))
	assert.Equal(t, Blue, ColorForChannel(2))
	assert.Equal(t, Black, ColorForChannel(3))
}

func TestColorForBase(t *testing.T) {
	assert.Equal(t, Red, ColorForBase(A))
	assert.Equal(t, Black, ColorForBase(T))
	assert.Equal(t, UnknownColor, ColorForBase(NC))
}

func TestInstrumentTypesInOrder(t *testing.T) {
	order := InstrumentTypesInOrder()
	assert.Len(t, order, int(InstrumentCount))
	assert.Equal(t, HiSeq, order[0])
	assert.Equal(t, MiniSeq, order[len(order)-1])
}
