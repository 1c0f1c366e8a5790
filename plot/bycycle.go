package plot

import (
	"sort"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/filter"
	"github.com/grailbio/interop/interoperr"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/runmetrics"
)

// Series is one labeled line/candlestick sequence of a by-cycle or
// by-lane plot: one series per channel for channel-indexed metrics, one
// per base for base-indexed metrics, or a single aggregate series
// otherwise.
type Series struct {
	Label   string
	Color   constants.PlotColor
	Points  []Candlestick // P50 holds the mean for average (non-distribution) plots
	XAxis   Axis
	YAxis   Axis
}

// cycleSample is one (cycle, lane, value) observation collected while
// scanning a metric family for a by-cycle plot.
type cycleSample struct {
	lane  uint16
	cycle uint16
	value float64
}

// collectByCycle gathers every (lane,cycle)-keyed observation of
// metricType for one channel/base index (index -1 for scalar metrics)
// from every lane, tile and read; it applies no filter selection.
func collectByCycle(f *runmetrics.Facade, metricType constants.MetricType, index int) []cycleSample {
	var out []cycleSample
	switch metricType.Group() {
	case constants.Error:
		for _, r := range f.Error.Iter() {
			out = append(out, cycleSample{r.LaneNum(), r.CycleNum(), float64(r.ErrorRate)})
		}
	case constants.Q:
		bins := metric.Bins(f.Q)
		for _, r := range f.Q.Iter() {
			out = append(out, cycleSample{r.LaneNum(), r.CycleNum(), qValueFor(metricType, r.Hist, bins)})
		}
	case constants.Extraction:
		for _, r := range f.Extraction.Iter() {
			v := extractionValueFor(metricType, r, index)
			out = append(out, cycleSample{r.LaneNum(), r.CycleNum(), v})
		}
	case constants.CorrectedInt:
		for _, r := range f.CorrectedIntensity.Iter() {
			v := correctedValueFor(metricType, r, index)
			out = append(out, cycleSample{r.LaneNum(), r.CycleNum(), v})
		}
	case constants.Image:
		for _, r := range f.Image.Iter() {
			v := imageValueFor(r, index)
			out = append(out, cycleSample{r.LaneNum(), r.CycleNum(), v})
		}
	}
	return out
}

func qValueFor(metricType constants.MetricType, hist []uint32, bins []metric.QScoreBin) float64 {
	switch metricType {
	case constants.PercentQ20, constants.AccumPercentQ20:
		return metric.PercentOverQ(hist, bins, 20) * 100
	case constants.PercentQ30, constants.AccumPercentQ30:
		return metric.PercentOverQ(hist, bins, 30) * 100
	case constants.QScore:
		return float64(metric.MedianQ(hist, bins))
	}
	return floatNaN()
}

func extractionValueFor(metricType constants.MetricType, r metric.ExtractionRecord, index int) float64 {
	switch metricType {
	case constants.Intensity:
		if index >= 0 && index < len(r.P90) {
			return float64(r.P90[index])
		}
	case constants.FWHM:
		if index >= 0 && index < len(r.FocusScore) {
			return float64(r.FocusScore[index])
		}
	}
	return floatNaN()
}

func correctedValueFor(metricType constants.MetricType, r metric.CorrectedIntensityRecord, index int) float64 {
	switch metricType {
	case constants.SignalToNoise:
		return float64(r.SignalToNoise)
	case constants.PercentBase:
		if index >= 0 && index < len(constants.Bases) {
			return float64(r.PercentBase(constants.Bases[index]))
		}
	case constants.CorrectedIntensity:
		if index >= 0 && index < len(r.CorrectedIntensityAll) {
			return float64(r.CorrectedIntensityAll[index])
		}
	case constants.CalledIntensity:
		if index >= 0 && index < len(r.CalledIntensity) {
			return float64(r.CalledIntensity[index])
		}
	}
	return floatNaN()
}

func imageValueFor(r metric.ImageRecord, index int) float64 {
	if index >= 0 && index < len(r.MinContrast) {
		return float64(r.MinContrast[index])
	}
	return floatNaN()
}

func floatNaN() float64 { return nanValue }

var nanValue = func() float64 {
	var x float64
	return x / x // NaN without importing math twice across files; x=0/0
}()

// channelIndices lists the indices to build one series per, for
// metricType: channel count for channel-indexed types, len(Bases) for
// base-indexed types, or a single -1 (scalar) otherwise.
func channelIndices(metricType constants.MetricType, channelCount int) []int {
	switch metricType {
	case constants.Intensity, constants.FWHM:
		idx := make([]int, channelCount)
		for i := range idx {
			idx[i] = i
		}
		return idx
	case constants.PercentBase, constants.CorrectedIntensity, constants.CalledIntensity:
		// Called/corrected intensities and percent-base are stored per
		// DNA base (A/C/G/T), not per optical channel.
		idx := make([]int, len(constants.Bases))
		for i := range idx {
			idx[i] = i
		}
		return idx
	default:
		return []int{-1}
	}
}

func seriesLabel(metricType constants.MetricType, index int) (string, constants.PlotColor) {
	switch metricType {
	case constants.PercentBase, constants.CorrectedIntensity, constants.CalledIntensity:
		if index >= 0 && index < len(constants.Bases) {
			b := constants.Bases[index]
			return b.String(), constants.ColorForBase(b)
		}
	case constants.Intensity, constants.FWHM:
		if index >= 0 {
			return channelLabel(index), constants.ColorForChannel(index)
		}
	}
	return metricType.String(), constants.Black
}

func channelLabel(index int) string {
	return []string{"Channel 1", "Channel 2", "Channel 3", "Channel 4"}[min(index, 3)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ByCycle builds one series per channel/base (or a single aggregate
// series) for metricType, aggregating across tiles at each cycle.
// distribution selects a Tukey candlestick summary per cycle instead of
// the mean. Rejects metric types that are not cycle-indexed with
// InvalidMetricType, mirroring ByLane's symmetric rejection of cycle
// metrics. Does not run opts through filter.Validate: that rejects
// Cycle=All for cycle metrics, but producing one point per cycle is
// exactly what this plot does, so Cycle is deliberately left free and
// only Lane is applied as a restriction.
func ByCycle(f *runmetrics.Facade, metricType constants.MetricType, opts filter.Options, distribution bool) ([]Series, error) {
	if !metricType.IsCycleMetric() {
		return nil, interoperr.New(interoperr.InvalidMetricType, metricType.String())
	}
	channelCount := len(f.RunInfo.Channels)
	var out []Series
	for _, idx := range channelIndices(metricType, channelCount) {
		label, color := seriesLabel(metricType, idx)
		samples := collectByCycle(f, metricType, idx)
		byCycle := map[uint16][]float64{}
		for _, s := range samples {
			if opts.Lane != filter.All && int(s.lane) != opts.Lane {
				continue
			}
			byCycle[s.cycle] = append(byCycle[s.cycle], s.value)
		}
		cycles := make([]uint16, 0, len(byCycle))
		for c := range byCycle {
			cycles = append(cycles, c)
		}
		sort.Slice(cycles, func(i, j int) bool { return cycles[i] < cycles[j] })

		series := Series{Label: label, Color: color}
		var ys []float64
		for _, c := range cycles {
			vals := byCycle[c]
			if distribution {
				series.Points = append(series.Points, BuildCandlestick(float64(c), vals))
				ys = append(ys, vals...)
			} else {
				mean := meanOf(vals)
				series.Points = append(series.Points, Candlestick{X: float64(c), P50: mean, Min: mean, Max: mean, P25: mean, P75: mean})
				ys = append(ys, mean)
			}
		}
		series.XAxis = ScaleX(cyclesToFloat(cycles))
		series.YAxis = ScaleY(ys)
		out = append(out, series)
	}
	return out, nil
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return floatNaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func cyclesToFloat(cycles []uint16) []float64 {
	out := make([]float64, len(cycles))
	for i, c := range cycles {
		out[i] = float64(c)
	}
	return out
}
