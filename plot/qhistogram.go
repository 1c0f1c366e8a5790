package plot

import (
	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/runmetrics"
)

// HistogramBar is one Q-score bin's total count, scaled to a readable
// unit (see QHistogram's Scale/ScaleLabel).
type HistogramBar struct {
	Bin   metric.QScoreBin
	Count float64
	Above bool // true if Bin.Value >= the split threshold, when one was given
}

// QHistogram is the sum histogram over every filtered tile/cycle, with
// counts scaled to millions or billions so the bars stay readable, and
// optionally split at a Q threshold into a below/above series pair.
type QHistogram struct {
	Bars       []HistogramBar
	Scale      float64
	ScaleLabel string
	HasSplit   bool
	Threshold  int
}

const (
	billion = 1e9
	million = 1e6
)

// BuildQHistogram sums f.Q's histograms across every tile matching
// opts' lane/cycle selection. threshold <= 0 means no below/above split.
func BuildQHistogram(f *runmetrics.Facade, opts filter.Options, threshold int) *QHistogram {
	bins := identityBinsIfEmpty(metric.Bins(f.Q), metric.CountQVals(f.Q))
	sums := make([]uint32, len(bins))
	for _, rec := range f.Q.Iter() {
		if opts.Lane != filter.All && int(rec.LaneNum()) != opts.Lane {
			continue
		}
		if opts.Cycle != filter.All && int(rec.CycleNum()) != opts.Cycle {
			continue
		}
		for i, v := range rec.Hist {
			if i < len(sums) {
				sums[i] += v
			}
		}
	}

	var total uint64
	for _, v := range sums {
		total += uint64(v)
	}
	scale, label := billion, "billions"
	if total < billion {
		scale, label = million, "millions"
	}

	h := &QHistogram{Scale: scale, ScaleLabel: label, HasSplit: threshold > 0, Threshold: threshold}
	for i, bin := range bins {
		h.Bars = append(h.Bars, HistogramBar{
			Bin:   bin,
			Count: float64(sums[i]) / scale,
			Above: threshold > 0 && int(bin.Value) >= threshold,
		})
	}
	return h
}
