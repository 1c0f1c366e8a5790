// Package summary computes the aggregate per-lane, per-read rollups
// (yield proxy via cluster counts, density, %PF, %aligned, phasing,
// error rate, %>=Q30) that a run report surfaces, without the
// stdout-printing debug behavior the original system mixed into the
// same computation.
package summary

import (
	"sort"

	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/run"
	"github.com/grailbio/interop/runmetrics"
)

// ReadRollup is one read's aggregated statistics, either within a
// single lane (LaneRollup.Reads) or across the whole run (Report.Reads).
type ReadRollup struct {
	Read              int
	IsIndexedRead     bool
	PercentAligned    float64
	PercentPhasing    float64
	PercentPrephasing float64
	ErrorRate         float64
	PercentQ30        float64
}

// LaneRollup is one lane's tile-averaged density/cluster/PF statistics
// plus its per-read breakdown.
type LaneRollup struct {
	Lane              uint16
	ClusterDensityK   float64
	ClusterDensityPfK float64
	ClusterCountK     float64
	ClusterCountPfK   float64
	PercentPF         float64
	Reads             []ReadRollup
}

// Report is the full run summary: one rollup per lane, plus an overall
// per-read rollup aggregated across every lane (weighted by each lane's
// passing-filter cluster count).
type Report struct {
	Lanes []LaneRollup
	Reads []ReadRollup
}

type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a *accumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Build aggregates f's metric sets into a Report. Any family absent
// from f (an empty Set) simply contributes no rollup data to the
// columns it would have fed; it is never an error.
func Build(f *runmetrics.Facade) *Report {
	laneTiles := map[uint16][]metric.TileRecord{}
	var laneOrder []uint16
	for _, rec := range f.Tile.Iter() {
		lane := rec.LaneNum()
		if _, ok := laneTiles[lane]; !ok {
			laneOrder = append(laneOrder, lane)
		}
		laneTiles[lane] = append(laneTiles[lane], rec)
	}
	sort.Slice(laneOrder, func(i, j int) bool { return laneOrder[i] < laneOrder[j] })

	bins := metric.Bins(f.Q)
	report := &Report{}
	for _, lane := range laneOrder {
		lr := buildLaneRollup(lane, laneTiles[lane], f, bins)
		report.Lanes = append(report.Lanes, lr)
	}
	report.Reads = aggregateOverallReads(f.RunInfo, report.Lanes)
	return report
}

func buildLaneRollup(lane uint16, tiles []metric.TileRecord, f *runmetrics.Facade, bins []metric.QScoreBin) LaneRollup {
	var density, densityPf, count, countPf, pf accumulator
	for _, t := range tiles {
		density.add(float64(t.ClusterDensity))
		densityPf.add(float64(t.ClusterDensityPf))
		count.add(float64(t.ClusterCount))
		countPf.add(float64(t.ClusterCountPf))
		if t.ClusterCount != 0 {
			pf.add(float64(t.ClusterCountPf) / float64(t.ClusterCount) * 100)
		}
	}
	lr := LaneRollup{
		Lane:              lane,
		ClusterDensityK:   density.mean(),
		ClusterDensityPfK: densityPf.mean(),
		ClusterCountK:     count.mean(),
		ClusterCountPfK:   countPf.mean(),
		PercentPF:         pf.mean(),
	}
	for _, read := range f.RunInfo.Reads {
		lr.Reads = append(lr.Reads, buildReadRollup(read, lane, tiles, f, bins))
	}
	return lr
}

func buildReadRollup(read run.ReadInfo, lane uint16, tiles []metric.TileRecord, f *runmetrics.Facade, bins []metric.QScoreBin) ReadRollup {
	var aligned, phasing, prephasing accumulator
	for _, t := range tiles {
		for _, rs := range t.Reads {
			if int(rs.Read) != read.Number {
				continue
			}
			aligned.add(float64(rs.PercentAligned))
			phasing.add(float64(rs.PercentPhasing))
			prephasing.add(float64(rs.PercentPrephasing))
		}
	}

	var errRate accumulator
	for _, rec := range f.Error.Iter() {
		if rec.LaneNum() != lane || !withinRead(read, rec.CycleNum()) {
			continue
		}
		errRate.add(float64(rec.ErrorRate))
	}

	var q30 accumulator
	for _, rec := range f.QByLane.Iter() {
		if rec.Lane != lane || !withinRead(read, rec.Cycle) {
			continue
		}
		q30.add(metric.PercentOverQ(rec.Hist, bins, 30) * 100)
	}

	return ReadRollup{
		Read:              read.Number,
		IsIndexedRead:     read.IsIndexedRead,
		PercentAligned:    aligned.mean(),
		PercentPhasing:    phasing.mean(),
		PercentPrephasing: prephasing.mean(),
		ErrorRate:         errRate.mean(),
		PercentQ30:        q30.mean(),
	}
}

func withinRead(read run.ReadInfo, cycle uint16) bool {
	return int(cycle) >= read.FirstCycle && int(cycle) <= read.LastCycle
}

// aggregateOverallReads rolls every lane's per-read stats into one
// run-wide rollup per read, weighted by each lane's passing-filter
// cluster count (unweighted when no lane has any PF clusters yet).
func aggregateOverallReads(info *run.Info, lanes []LaneRollup) []ReadRollup {
	out := make([]ReadRollup, 0, len(info.Reads))
	for _, read := range info.Reads {
		var weightSum float64
		var aligned, phasing, prephasing, errRate, q30 float64
		for _, lane := range lanes {
			var rr *ReadRollup
			for i := range lane.Reads {
				if lane.Reads[i].Read == read.Number {
					rr = &lane.Reads[i]
					break
				}
			}
			if rr == nil {
				continue
			}
			w := lane.ClusterCountPfK
			if w == 0 {
				w = 1
			}
			weightSum += w
			aligned += rr.PercentAligned * w
			phasing += rr.PercentPhasing * w
			prephasing += rr.PercentPrephasing * w
			errRate += rr.ErrorRate * w
			q30 += rr.PercentQ30 * w
		}
		rollup := ReadRollup{Read: read.Number, IsIndexedRead: read.IsIndexedRead}
		if weightSum > 0 {
			rollup.PercentAligned = aligned / weightSum
			rollup.PercentPhasing = phasing / weightSum
			rollup.PercentPrephasing = prephasing / weightSum
			rollup.ErrorRate = errRate / weightSum
			rollup.PercentQ30 = q30 / weightSum
		}
		out = append(out, rollup)
	}
	return out
}
