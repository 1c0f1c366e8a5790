package metric

import "github.com/grailbio/interop/ids"

// QByLaneRecord is a Q histogram summed across every tile of one lane at
// one cycle.
type QByLaneRecord struct {
	Lane  uint16
	Cycle uint16
	Hist  []uint32
}

func (r QByLaneRecord) Key() uint64     { return ids.LaneCycleKey(r.Lane, r.Cycle) }
func (r QByLaneRecord) LaneNum() uint16 { return r.Lane }

// BuildQByLane sums qset's histograms across tiles, grouped by
// (lane, cycle).
func BuildQByLane(qset *Set[QRecord]) *Set[QByLaneRecord] {
	out := New[QByLaneRecord]()
	order := make([]uint64, 0)
	accum := make(map[uint64]*QByLaneRecord)
	for _, rec := range qset.Iter() {
		key := ids.LaneCycleKey(rec.LaneNum(), rec.CycleNum())
		cur, ok := accum[key]
		if !ok {
			cur = &QByLaneRecord{Lane: rec.LaneNum(), Cycle: rec.CycleNum(), Hist: make([]uint32, len(rec.Hist))}
			accum[key] = cur
			order = append(order, key)
		}
		for i, v := range rec.Hist {
			if i >= len(cur.Hist) {
				cur.Hist = append(cur.Hist, 0)
			}
			cur.Hist[i] += v
		}
	}
	for _, key := range order {
		_ = out.Push(*accum[key])
	}
	return out
}
