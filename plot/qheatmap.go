package plot

import (
	"sort"

	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/runmetrics"
)

// QHeatmap is a cycle x Q-value grid, each row independently normalized
// so its largest cell reads 100. Compressed (legacy) bins are expanded
// across every Q-value they cover, splitting the bin's count evenly,
// so every row has the same full 0..Qmax resolution regardless of how
// coarsely the source histogram was binned.
type QHeatmap struct {
	Cycles []uint16
	QMax   int
	Values [][]float64 // Values[i] has QMax+1 entries, one per Q value 0..QMax
}

// BuildQHeatmap aggregates f.Q's per-tile histograms into one
// full-resolution row per cycle, restricted to opts' lane selection.
func BuildQHeatmap(f *runmetrics.Facade, opts filter.Options) *QHeatmap {
	bins := identityBinsIfEmpty(metric.Bins(f.Q), metric.CountQVals(f.Q))
	qMax := 0
	for _, b := range bins {
		if int(b.Upper) > qMax {
			qMax = int(b.Upper)
		}
	}

	byCycle := map[uint16][]uint32{}
	var cycles []uint16
	for _, rec := range f.Q.Iter() {
		if opts.Lane != filter.All && int(rec.LaneNum()) != opts.Lane {
			continue
		}
		cycle := rec.CycleNum()
		row, ok := byCycle[cycle]
		if !ok {
			row = make([]uint32, qMax+1)
			byCycle[cycle] = row
			cycles = append(cycles, cycle)
		}
		expandHistogram(rec.Hist, bins, row)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i] < cycles[j] })

	values := make([][]float64, len(cycles))
	for i, c := range cycles {
		values[i] = normalizeRow(byCycle[c])
	}
	return &QHeatmap{Cycles: cycles, QMax: qMax, Values: values}
}

// identityBinsIfEmpty returns bins unchanged if non-empty, or a 1:1
// index-as-Q-value table of the given width otherwise: raw (version 4,
// unbinned) histograms carry no header bin table, and metric.PercentOverQ
// and metric.MedianQ likewise fall back to treating the histogram index
// as the Q-value directly in that case.
func identityBinsIfEmpty(bins []metric.QScoreBin, width int) []metric.QScoreBin {
	if len(bins) > 0 {
		return bins
	}
	out := make([]metric.QScoreBin, width)
	for i := range out {
		out[i] = metric.QScoreBin{Lower: uint8(i), Upper: uint8(i), Value: uint8(i)}
	}
	return out
}

func expandHistogram(hist []uint32, bins []metric.QScoreBin, out []uint32) {
	for i, count := range hist {
		if i >= len(bins) || count == 0 {
			continue
		}
		b := bins[i]
		width := int(b.Upper) - int(b.Lower) + 1
		if width <= 0 {
			continue
		}
		share := count / uint32(width)
		remainder := count % uint32(width)
		for v := int(b.Lower); v <= int(b.Upper) && v < len(out); v++ {
			add := share
			if uint32(v-int(b.Lower)) < remainder {
				add++
			}
			out[v] += add
		}
	}
}

func normalizeRow(row []uint32) []float64 {
	var max uint32
	for _, v := range row {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(row))
	if max == 0 {
		return out
	}
	for i, v := range row {
		out[i] = float64(v) / float64(max) * 100
	}
	return out
}
