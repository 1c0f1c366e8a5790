package metric

import "sort"

// Locatable is satisfied by every record kind: all records begin with a
// lane/tile identifier per spec.md §3.2.
type Locatable interface {
	LaneNum() uint16
	TileNum() uint32
}

// Cyclable is additionally satisfied by cycle-indexed records.
type Cyclable interface {
	CycleNum() uint16
}

// locatableRecord is the constraint used by the derived-index helpers
// below: any Record that is also Locatable.
type locatableRecord interface {
	Record
	Locatable
}

// Lanes returns the distinct lane numbers present in the set, in
// ascending order.
func Lanes[R locatableRecord](s *Set[R]) []uint16 {
	seen := make(map[uint16]bool)
	for _, r := range s.records {
		seen[r.LaneNum()] = true
	}
	out := make([]uint16, 0, len(seen))
	for lane := range seen {
		out = append(out, lane)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TileIDsInLane returns the distinct tile numbers present for lane, in
// ascending order.
func TileIDsInLane[R locatableRecord](s *Set[R], lane uint16) []uint32 {
	seen := make(map[uint32]bool)
	for _, r := range s.records {
		if r.LaneNum() == lane {
			seen[r.TileNum()] = true
		}
	}
	out := make([]uint32, 0, len(seen))
	for tile := range seen {
		out = append(out, tile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TileNumbers returns every record's tile number, in file order,
// duplicates included — the shape tile-naming-method inference needs.
func TileNumbers[R locatableRecord](s *Set[R]) []uint32 {
	out := make([]uint32, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.TileNum())
	}
	return out
}

// MaxLane returns the largest lane number present, or 0 for an empty set.
func MaxLane[R locatableRecord](s *Set[R]) uint16 {
	var max uint16
	for _, r := range s.records {
		if l := r.LaneNum(); l > max {
			max = l
		}
	}
	return max
}

// cyclableRecord additionally requires CycleNum.
type cyclableRecord interface {
	Record
	Locatable
	Cyclable
}

// MaxCycle returns the largest cycle number present, or 0 for an empty set.
func MaxCycle[R cyclableRecord](s *Set[R]) uint16 {
	var max uint16
	for _, r := range s.records {
		if c := r.CycleNum(); c > max {
			max = c
		}
	}
	return max
}
