package metric

import (
	"sort"

	"github.com/grailbio/interop/constants"
)

// legacyBinTable maps a distinct-bin count (2..7, or the NextSeq special
// case) to its canonical (lower, upper, value) triples. Precomputed once
// rather than branched inline, the same "fixed lookup table over a small
// closed enumeration" shape as pileup/snp's qualSumTable.
var legacyBinTable = map[int][]QScoreBin{
	7: {{0, 9, 6}, {10, 19, 15}, {20, 24, 22}, {25, 29, 27}, {30, 34, 33}, {35, 39, 37}, {40, 49, 40}},
	6: {{0, 9, 7}, {10, 19, 16}, {20, 26, 24}, {27, 29, 29}, {30, 34, 33}, {35, 49, 38}},
	5: {{0, 9, 7}, {10, 19, 16}, {20, 29, 25}, {30, 34, 33}, {35, 49, 38}},
	4: {{0, 9, 7}, {10, 29, 20}, {30, 34, 33}, {35, 49, 38}},
	3: {{0, 9, 7}, {10, 29, 20}, {30, 49, 36}},
	2: {{0, 27, 13}, {28, 49, 35}},
}

var legacyBinTableNextSeq = []QScoreBin{
	{0, 9, 8}, {10, 19, 13}, {20, 24, 22}, {25, 29, 27}, {30, 34, 32}, {35, 39, 37},
}

var legacyBinTableOther = []QScoreBin{{0, 50, 20}}

// CountLegacyQScoreBins scans the histograms in set and returns the
// number of distinct bin indices that carry a non-zero count. Scanning
// stops once more than 7 have been found, so any result above 7 means
// "unbinned" (see RequiresLegacyBins). Returns 0 for version > 4 sets
// and for sets whose header already carries a bin table.
func CountLegacyQScoreBins(set *Set[QRecord]) int {
	if set.Header.Version > 4 {
		return 0
	}
	if len(Bins(set)) > 0 {
		return 0
	}
	const maxBinCount = 7
	found := make(map[int]bool)
	for _, rec := range set.Iter() {
		for i, v := range rec.Hist {
			if v > 0 {
				found[i] = true
			}
		}
		if len(found) > maxBinCount {
			break
		}
	}
	return len(found)
}

// RequiresLegacyBins reports whether count identifies a legacy-binnable
// histogram (1..7 distinct non-zero columns).
func RequiresLegacyBins(count int) bool {
	return count > 0 && count <= 7
}

// PopulateLegacyQScoreBins synthesizes and installs the bin table for
// count distinct bins given instrument, per the canonical table in
// spec.md §4.5. No-op if legacy binning isn't required.
func PopulateLegacyQScoreBins(set *Set[QRecord], instrument constants.InstrumentType, count int) {
	if !RequiresLegacyBins(count) {
		return
	}
	var bins []QScoreBin
	if instrument == constants.NextSeq {
		bins = legacyBinTableNextSeq
	} else if table, ok := legacyBinTable[count]; ok {
		bins = table
	} else {
		bins = legacyBinTableOther
	}
	SetBins(set, append([]QScoreBin(nil), bins...))
}

// CountQVals returns the histogram column count of set's first record,
// or 0 if set is empty.
func CountQVals(set *Set[QRecord]) int {
	if set.IsEmpty() {
		return 0
	}
	return len(set.Iter()[0].Hist)
}

// IsCompressed reports whether set's histograms use a binned
// (non-50-column) layout.
func IsCompressed(set *Set[QRecord]) bool {
	n := CountQVals(set)
	return n > 0 && n != qRawBinCount
}

// MaxQVal returns the last bin's upper Q-value for a compressed set, or
// the histogram column count otherwise (50 for raw histograms, one past
// the highest Q index 49).
func MaxQVal(set *Set[QRecord]) int {
	if IsCompressed(set) {
		bins := Bins(set)
		return int(bins[len(bins)-1].Upper)
	}
	return CountQVals(set)
}

// IndexForQValue returns the histogram column index covering qval.
func IndexForQValue(set *Set[QRecord], qval int) int {
	if !IsCompressed(set) {
		return qval
	}
	bins := Bins(set)
	for i, b := range bins {
		if qval >= int(b.Lower) && qval <= int(b.Upper) {
			return i
		}
	}
	return len(bins) - 1
}

// PercentOverQ returns the fraction (0..1) of total histogram counts
// whose representative Q-value is >= threshold. bins must align 1:1
// with hist by index (set.Extra's bin table, or a raw 0..49 table).
func PercentOverQ(hist []uint32, bins []QScoreBin, threshold int) float64 {
	var over, total uint64
	for i, v := range hist {
		total += uint64(v)
		value := i
		if i < len(bins) {
			value = int(bins[i].Value)
		}
		if value >= threshold {
			over += uint64(v)
		}
	}
	if total == 0 {
		return 0
	}
	return float64(over) / float64(total)
}

// MedianQ returns the representative Q-value of the histogram bin
// containing the median observation, or 0 if hist is all-zero.
func MedianQ(hist []uint32, bins []QScoreBin) int {
	var total uint64
	for _, v := range hist {
		total += uint64(v)
	}
	if total == 0 {
		return 0
	}
	half := (total + 1) / 2
	var cum uint64
	for i, v := range hist {
		cum += uint64(v)
		if cum >= half {
			if i < len(bins) {
				return int(bins[i].Value)
			}
			return i
		}
	}
	return 0
}

// PopulateCumulativeDistribution replaces each record's histogram with
// the running sum across ascending cycles of the same tile: the first
// cycle keeps its own histogram, every later cycle adds the previous
// cycle's (already-cumulative) histogram. Mutates set in place.
func PopulateCumulativeDistribution(set *Set[QRecord]) {
	if set.IsEmpty() {
		return
	}
	type tileKey struct {
		lane uint16
		tile uint32
	}
	byTile := make(map[tileKey][]QRecord)
	for _, rec := range set.Iter() {
		k := tileKey{rec.LaneNum(), rec.TileNum()}
		byTile[k] = append(byTile[k], rec)
	}
	for _, recs := range byTile {
		sort.Slice(recs, func(i, j int) bool { return recs[i].CycleNum() < recs[j].CycleNum() })
		prev := make([]uint32, len(recs[0].Hist))
		for i := range recs {
			cur := recs[i].Hist
			next := make([]uint32, len(cur))
			for b := range cur {
				acc := cur[b]
				if b < len(prev) {
					acc += prev[b]
				}
				next[b] = acc
			}
			recs[i].Hist = next
			prev = next
			set.Set(recs[i])
		}
	}
}
