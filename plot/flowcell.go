package plot

import (
	"sort"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/grailbio/interop/runmetrics"
)

// Heatmap is a lane x column-position grid of per-tile values, with a
// color range clamped to the Tukey-whisker bounds of the data (doubled,
// per spec.md's flowcell-map convention) so a handful of extreme tiles
// don't wash out the rest of the map.
type Heatmap struct {
	Lanes       []uint16
	ColumnCount int
	Values      [][]float64 // Values[i] has ColumnCount entries, one per lane in Lanes
	ColorMin    float64
	ColorMax    float64
	index       *TileIndex
}

// TileAt resolves the tile underlying heatmap cell (lane, column).
func (h *Heatmap) TileAt(lane uint16, column int) (ids.TileID, bool) {
	return h.index.Lookup(lane, uint32(column))
}

func valuePerTile(f *runmetrics.Facade, metricType constants.MetricType, opts filter.Options) map[ids.TileID]float64 {
	out := map[ids.TileID]float64{}
	if metricType.IsCycleMetric() {
		sums := map[ids.TileID]*accumulatorF{}
		for _, rec := range f.Error.Iter() {
			if metricType != constants.ErrorRate {
				continue
			}
			if opts.Cycle != filter.All && int(rec.CycleNum()) != opts.Cycle {
				continue
			}
			id := ids.TileID{Lane: rec.LaneNum(), Tile: rec.ID.Tile}
			a, ok := sums[id]
			if !ok {
				a = &accumulatorF{}
				sums[id] = a
			}
			a.add(float64(rec.ErrorRate))
		}
		for id, a := range sums {
			out[id] = a.mean()
		}
		return out
	}

	for _, rec := range f.Tile.Iter() {
		id := rec.ID
		switch metricType {
		case constants.Density:
			out[id] = float64(rec.ClusterDensity)
		case constants.DensityPF:
			out[id] = float64(rec.ClusterDensityPf)
		case constants.ClusterCount:
			out[id] = float64(rec.ClusterCount)
		case constants.ClusterCountPF:
			out[id] = float64(rec.ClusterCountPf)
		case constants.PercentAligned, constants.PercentPhasing, constants.PercentPrephasing:
			var a accumulatorF
			for _, rs := range rec.Reads {
				if opts.Read != filter.All && int(rs.Read) != opts.Read {
					continue
				}
				switch metricType {
				case constants.PercentAligned:
					a.add(float64(rs.PercentAligned))
				case constants.PercentPhasing:
					a.add(float64(rs.PercentPhasing))
				case constants.PercentPrephasing:
					a.add(float64(rs.PercentPrephasing))
				}
			}
			if a.count > 0 {
				out[id] = a.mean()
			}
		}
	}
	return out
}

type accumulatorF struct {
	sum   float64
	count int
}

func (a *accumulatorF) add(v float64) {
	a.sum += v
	a.count++
}

func (a *accumulatorF) mean() float64 {
	if a.count == 0 {
		return floatNaN()
	}
	return a.sum / float64(a.count)
}

// Flowcell builds a per-lane, per-column heatmap of metricType, one
// column per physical tile position (surfaces/swaths collapsed into a
// single column axis), per spec.md's flowcell-map layout.
func Flowcell(f *runmetrics.Facade, metricType constants.MetricType, opts filter.Options) (*Heatmap, error) {
	switch metricType {
	case constants.Density, constants.DensityPF, constants.ClusterCount, constants.ClusterCountPF,
		constants.PercentAligned, constants.PercentPhasing, constants.PercentPrephasing, constants.ErrorRate:
	default:
		return nil, interoperr.New(interoperr.InvalidMetricType, metricType.String())
	}
	if _, err := filter.Validate(opts, metricType, f.RunInfo); err != nil {
		return nil, err
	}

	layout := f.RunInfo.Layout
	method := f.TileNamingMethod
	allSurfaces := layout.SurfaceCount > 1

	values := valuePerTile(f, metricType, opts)

	laneSet := map[uint16]bool{}
	var maxColumn uint32
	type cell struct {
		lane, col int
		value     float64
	}
	var cells []cell
	index := NewTileIndex()
	for id, v := range values {
		if opts.Lane != filter.All && int(id.Lane) != opts.Lane {
			continue
		}
		laneSet[id.Lane] = true
		col := ids.PhysicalLocationColumn(method, uint32(layout.SectionPerLane), uint32(layout.TileCount), uint32(layout.SwathCount), id.Tile, allSurfaces)
		if col > maxColumn {
			maxColumn = col
		}
		cells = append(cells, cell{lane: int(id.Lane), col: int(col), value: v})
		index.Insert(id.Lane, col, id)
	}

	lanes := make([]uint16, 0, len(laneSet))
	for l := range laneSet {
		lanes = append(lanes, l)
	}
	sort.Slice(lanes, func(i, j int) bool { return lanes[i] < lanes[j] })
	laneRow := map[uint16]int{}
	for i, l := range lanes {
		laneRow[l] = i
	}

	columnCount := int(maxColumn) + 1
	grid := make([][]float64, len(lanes))
	for i := range grid {
		grid[i] = make([]float64, columnCount)
		for j := range grid[i] {
			grid[i][j] = floatNaN()
		}
	}
	var all []float64
	for _, c := range cells {
		grid[laneRow[uint16(c.lane)]][c.col] = c.value
		all = append(all, c.value)
	}

	colorMin, colorMax := colorRange(all, metricType)
	return &Heatmap{Lanes: lanes, ColumnCount: columnCount, Values: grid, ColorMin: colorMin, ColorMax: colorMax, index: index}, nil
}

func colorRange(values []float64, metricType constants.MetricType) (float64, float64) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if v == v { // not NaN
			clean = append(clean, v)
		}
	}
	sort.Float64s(clean)
	if len(clean) == 0 {
		return 0, 0
	}
	p25 := percentile(clean, 25)
	p75 := percentile(clean, 75)
	iqr := p75 - p25
	lo := p25 - 2*iqr
	hi := p75 + 2*iqr
	if lo < clean[0] {
		lo = clean[0]
	}
	if hi > clean[len(clean)-1] {
		hi = clean[len(clean)-1]
	}
	if metricType == constants.ErrorRate && hi > 5 {
		hi = 5
	}
	return lo, hi
}
