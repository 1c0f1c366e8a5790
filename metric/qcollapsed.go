package metric

import "github.com/grailbio/interop/ids"

// QCollapsedRecord pre-aggregates a per-tile/cycle Q histogram into the
// handful of numbers most plots and the imaging table actually need.
type QCollapsedRecord struct {
	ID                ids.CycleID
	CountGreaterEqQ20 uint64
	CountGreaterEqQ30 uint64
	TotalCount        uint64
	MedianQ           int
}

func (r QCollapsedRecord) Key() uint64      { return r.ID.Key() }
func (r QCollapsedRecord) LaneNum() uint16  { return r.ID.Lane }
func (r QCollapsedRecord) TileNum() uint32  { return r.ID.Tile }
func (r QCollapsedRecord) CycleNum() uint16 { return r.ID.Cycle }

// BuildQCollapsed derives a Q-collapsed set from qset, one record per
// (tile, cycle), summing counts at or above Q20/Q30 and locating the
// median bin. qset's own bin table (or the raw 0..49 table if qset is
// uncompressed) supplies each column's representative Q-value.
func BuildQCollapsed(qset *Set[QRecord]) *Set[QCollapsedRecord] {
	out := New[QCollapsedRecord]()
	bins := Bins(qset)
	for _, rec := range qset.Iter() {
		q20 := uint64(0)
		q30 := uint64(0)
		total := uint64(0)
		for i, v := range rec.Hist {
			total += uint64(v)
			value := i
			if i < len(bins) {
				value = int(bins[i].Value)
			}
			if value >= 20 {
				q20 += uint64(v)
			}
			if value >= 30 {
				q30 += uint64(v)
			}
		}
		_ = out.Push(QCollapsedRecord{
			ID:                rec.ID,
			CountGreaterEqQ20: q20,
			CountGreaterEqQ30: q30,
			TotalCount:        total,
			MedianQ:           MedianQ(rec.Hist, bins),
		})
	}
	return out
}
