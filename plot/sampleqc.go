package plot

import (
	"sort"

	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/runmetrics"
)

// SampleBar is one (sequence, sample-id) group's share of a lane's
// passing-filter clusters.
type SampleBar struct {
	IndexSequence string
	SampleID      string
	ClusterCount  uint64
	PercentOfLane float64
}

// BuildSampleQC groups lane's index-demultiplexed barcodes by
// (sequence, sample-id), summing cluster counts within each group, and
// expresses each group's share of the lane's total passing-filter
// cluster count, sorted ascending by sample id then sequence.
//
// mismatchTolerance folds observed sequences assigned to the same
// sample into one bar when they are within that many edit operations
// of the sample's most-observed sequence, the way a demux run absorbs
// a barcode read with a sequencing error into its intended sample.
// Pass 0 to keep every distinct observed sequence separate.
func BuildSampleQC(f *runmetrics.Facade, lane uint16, mismatchTolerance int) []SampleBar {
	type key struct{ seq, sample string }
	totals := map[key]uint64{}
	bySample := map[string][]string{}

	for _, rec := range f.Index.Iter() {
		if rec.LaneNum() != lane {
			continue
		}
		for _, bc := range rec.Barcodes {
			k := key{bc.IndexSequence, bc.SampleID}
			if _, ok := totals[k]; !ok {
				bySample[bc.SampleID] = append(bySample[bc.SampleID], bc.IndexSequence)
			}
			totals[k] += bc.ClusterCount
		}
	}

	merged := map[key]uint64{}
	for sample, seqs := range bySample {
		sort.Slice(seqs, func(i, j int) bool {
			return totals[key{seqs[i], sample}] > totals[key{seqs[j], sample}]
		})
		var canon []string
		for _, seq := range seqs {
			k := key{seq, sample}
			target := seq
			if mismatchTolerance > 0 {
				for _, c := range canon {
					if len(c) != len(seq) {
						continue
					}
					if metric.BarcodeDistance(seq, c, "", "") <= mismatchTolerance {
						target = c
						break
					}
				}
			}
			if target == seq {
				canon = append(canon, seq)
			}
			merged[key{target, sample}] += totals[k]
		}
	}

	var lanePf float64
	for _, rec := range f.Tile.Iter() {
		if rec.LaneNum() == lane {
			lanePf += float64(rec.ClusterCountPf)
		}
	}

	order := make([]key, 0, len(merged))
	for k := range merged {
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].sample != order[j].sample {
			return order[i].sample < order[j].sample
		}
		return order[i].seq < order[j].seq
	})

	out := make([]SampleBar, 0, len(order))
	for _, k := range order {
		bar := SampleBar{IndexSequence: k.seq, SampleID: k.sample, ClusterCount: merged[k]}
		if lanePf > 0 {
			bar.PercentOfLane = float64(bar.ClusterCount) / lanePf * 100
		}
		out = append(out, bar)
	}
	return out
}
