package plot

import (
	"sort"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/interoperr"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/runmetrics"
)

// tileValuesFor extracts every value of metricType that tile rec
// contributes, honoring opts.Read for per-read metrics (all reads when
// opts.Read is filter.All).
func tileValuesFor(metricType constants.MetricType, rec metric.TileRecord, opts filter.Options) []float64 {
	switch metricType {
	case constants.Density:
		return []float64{float64(rec.ClusterDensity)}
	case constants.DensityPF:
		return []float64{float64(rec.ClusterDensityPf)}
	case constants.ClusterCount:
		return []float64{float64(rec.ClusterCount)}
	case constants.ClusterCountPF:
		return []float64{float64(rec.ClusterCountPf)}
	}
	if !metricType.IsReadMetric() {
		return nil
	}
	var out []float64
	for _, rs := range rec.Reads {
		if opts.Read != filter.All && int(rs.Read) != opts.Read {
			continue
		}
		switch metricType {
		case constants.PercentAligned:
			out = append(out, float64(rs.PercentAligned))
		case constants.PercentPhasing:
			out = append(out, float64(rs.PercentPhasing))
		case constants.PercentPrephasing:
			out = append(out, float64(rs.PercentPrephasing))
		}
	}
	return out
}

// ByLane builds one candlestick per lane (sorted ascending) summarizing
// metricType across every tile (and, for per-read metrics, every
// matching read) of that lane. Rejects cycle-indexed metric types with
// InvalidMetricType: those belong to ByCycle instead.
func ByLane(f *runmetrics.Facade, metricType constants.MetricType, opts filter.Options) ([]Candlestick, error) {
	if metricType.IsCycleMetric() {
		return nil, interoperr.New(interoperr.InvalidMetricType, metricType.String())
	}
	if _, err := filter.Validate(opts, metricType, f.RunInfo); err != nil {
		return nil, err
	}

	byLane := map[uint16][]float64{}
	var lanes []uint16
	for _, rec := range f.Tile.Iter() {
		lane := rec.LaneNum()
		if opts.Lane != filter.All && int(lane) != opts.Lane {
			continue
		}
		if opts.Tile != filter.All && int(rec.TileNum()) != opts.Tile {
			continue
		}
		if _, ok := byLane[lane]; !ok {
			lanes = append(lanes, lane)
		}
		byLane[lane] = append(byLane[lane], tileValuesFor(metricType, rec, opts)...)
	}
	sort.Slice(lanes, func(i, j int) bool { return lanes[i] < lanes[j] })

	out := make([]Candlestick, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, BuildCandlestick(float64(lane), byLane[lane]))
	}
	return out, nil
}
