// Package filter implements the selection/validation model (C10) that
// projections (table, plot) consult before building output: which lane,
// channel, base, surface, read, cycle, tile, swath, and section to
// restrict to, each with a sentinel "all" value.
package filter

import (
	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/interoperr"
	"github.com/grailbio/interop/run"
)

// All is the sentinel meaning "every value of this dimension", used for
// every int-valued selection field below.
const All = -1

// Dimension names one axis of Options, returned by Validate's remaining
// list so callers can drive exhaustive filter enumeration in tests.
type Dimension int

const (
	DimLane Dimension = iota
	DimChannel
	DimBase
	DimSurface
	DimRead
	DimCycle
	DimTile
	DimSwath
	DimSection
)

var dimensionNames = [...]string{
	"Lane", "Channel", "Base", "Surface", "Read", "Cycle", "Tile", "Swath", "Section",
}

func (d Dimension) String() string {
	if int(d) >= 0 && int(d) < len(dimensionNames) {
		return dimensionNames[d]
	}
	return "UnknownDimension"
}

// Options is a selection across every filterable axis; All means
// unrestricted.
type Options struct {
	Lane    int
	Channel int
	Base    constants.DNABase
	Surface constants.SurfaceType
	Read    int
	Cycle   int
	Tile    int
	Swath   int
	Section int
}

// NewOptions returns an Options with every dimension set to All.
func NewOptions() Options {
	return Options{
		Lane: All, Channel: All, Base: constants.DNABase(All),
		Surface: constants.SurfaceType(All), Read: All, Cycle: All,
		Tile: All, Swath: All, Section: All,
	}
}

// requiresCycle reports whether metricType's projection needs a
// specific cycle rather than accepting "all" (e.g. a flowcell heatmap
// is drawn for one cycle at a time).
func requiresCycle(metricType constants.MetricType) bool {
	return metricType.IsCycleMetric()
}

// Validate checks Options' concrete values against info's declared
// ranges and metricType's acceptance of "all" on each dimension,
// returning the dimensions still free (left at All) for exhaustive
// enumeration, or InvalidFilterOption on the first violation.
func Validate(o Options, metricType constants.MetricType, info *run.Info) ([]Dimension, error) {
	var remaining []Dimension

	if o.Lane == All {
		remaining = append(remaining, DimLane)
	} else if o.Lane < 1 || o.Lane > info.Layout.LaneCount {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Lane")
	}

	if o.Cycle == All {
		if requiresCycle(metricType) {
			return nil, interoperr.New(interoperr.InvalidFilterOption, "Cycle")
		}
		remaining = append(remaining, DimCycle)
	} else if o.Cycle < 1 || o.Cycle > info.TotalCycles() {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Cycle")
	}

	if o.Read == All {
		remaining = append(remaining, DimRead)
	} else {
		found := false
		for _, r := range info.Reads {
			if r.Number == o.Read {
				found = true
				break
			}
		}
		if !found {
			return nil, interoperr.New(interoperr.InvalidFilterOption, "Read")
		}
	}

	if o.Channel == All {
		remaining = append(remaining, DimChannel)
	} else if o.Channel < 0 || o.Channel >= len(info.Channels) {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Channel")
	}

	if o.Base == constants.DNABase(All) {
		remaining = append(remaining, DimBase)
	} else if o.Base < constants.NC || o.Base >= constants.DNABase(constants.NumBases) {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Base")
	}

	if o.Surface == constants.SurfaceType(All) {
		remaining = append(remaining, DimSurface)
	} else if info.Layout.SurfaceCount > 0 && (int(o.Surface) < 0 || int(o.Surface) > info.Layout.SurfaceCount) {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Surface")
	}

	if o.Swath == All {
		remaining = append(remaining, DimSwath)
	} else if o.Swath < 1 || o.Swath > info.Layout.SwathCount {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Swath")
	}

	if o.Section == All {
		remaining = append(remaining, DimSection)
	} else if info.Layout.SectionPerLane > 0 && (o.Section < 1 || o.Section > info.Layout.SectionPerLane) {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Section")
	}

	if o.Tile == All {
		remaining = append(remaining, DimTile)
	} else if o.Tile < 1 || o.Tile > info.Layout.TileCount {
		return nil, interoperr.New(interoperr.InvalidFilterOption, "Tile")
	}

	return remaining, nil
}
