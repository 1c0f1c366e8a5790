package table

import (
	"math"
	"sort"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/run"
	"github.com/grailbio/interop/runmetrics"
)

// Table is the imaging table: a fixed set of present columns and one
// float32 row slice per (lane, tile, cycle) seen in any cycle-indexed
// metric set. Absent cells hold NaN.
type Table struct {
	Columns      []Column
	Offsets      map[ColumnID]int
	RowWidth     int
	Keys         []uint64 // CycleID key per row, in row order
	Data         [][]float32
	ChannelCount int
}

// Value returns the row's cells for column id, or nil if the column is
// absent from this table.
func (t *Table) Value(row int, id ColumnID) []float32 {
	off, ok := t.Offsets[id]
	if !ok {
		return nil
	}
	w := columnWidth(id, t.ChannelCount)
	return t.Data[row][off : off+w]
}

func columnWidth(id ColumnID, channelCount int) int {
	switch columnSchema[id].DataType {
	case constants.ChannelArray:
		return channelCount
	case constants.BaseArray:
		return constants.NumBases
	default:
		return 1
	}
}

// Build assembles the imaging table for one loaded run, following
// SPEC_FULL §4.8's four steps: detect present columns, assign offsets,
// fill cells per metric family, then round.
func Build(f *runmetrics.Facade) *Table {
	channelCount := len(f.RunInfo.Channels)

	present := detectPresentColumns(f)
	t := &Table{
		Offsets:      map[ColumnID]int{},
		ChannelCount: channelCount,
	}
	offset := 0
	for _, id := range present {
		t.Columns = append(t.Columns, columnSchema[id])
		t.Offsets[id] = offset
		offset += columnWidth(id, channelCount)
	}
	t.RowWidth = offset

	rowIndex := t.indexRows(f)
	t.Data = make([][]float32, len(rowIndex))
	for i := range t.Data {
		row := make([]float32, t.RowWidth)
		for j := range row {
			row[j] = float32(math.NaN())
		}
		t.Data[i] = row
	}

	t.fillIDColumns(f, rowIndex)
	t.fillTileColumns(f, rowIndex)
	t.fillErrorColumn(f, rowIndex)
	t.fillQColumns(f, rowIndex)
	t.fillExtractionColumns(f, rowIndex)
	t.fillCorrectedIntensityColumns(f, rowIndex)
	t.fillImageColumns(f, rowIndex)

	t.round()
	return t
}

// detectPresentColumns trims columns whose source family is entirely
// empty (step 1); id columns are always present.
func detectPresentColumns(f *runmetrics.Facade) []ColumnID {
	nonEmpty := map[constants.MetricGroup]bool{
		constants.Tile:         !f.Tile.IsEmpty(),
		constants.Error:        !f.Error.IsEmpty(),
		constants.Q:            !f.Q.IsEmpty(),
		constants.Extraction:   !f.Extraction.IsEmpty(),
		constants.CorrectedInt: !f.CorrectedIntensity.IsEmpty(),
		constants.Image:        !f.Image.IsEmpty(),
	}
	var out []ColumnID
	for id := ColumnID(0); id < columnCount; id++ {
		g := columnSchema[id].Group
		if g == constants.UnknownMetricGroup || nonEmpty[g] {
			out = append(out, id)
		}
	}
	return out
}

// indexRows collects every (lane, tile, cycle) key observed across the
// cycle-indexed families and assigns each a row index, in ascending key
// order for deterministic output.
func (t *Table) indexRows(f *runmetrics.Facade) map[uint64]int {
	seen := map[uint64]bool{}
	for _, r := range f.Extraction.Iter() {
		seen[r.Key()] = true
	}
	for _, r := range f.CorrectedIntensity.Iter() {
		seen[r.Key()] = true
	}
	for _, r := range f.Error.Iter() {
		seen[r.Key()] = true
	}
	for _, r := range f.Q.Iter() {
		seen[r.Key()] = true
	}
	for _, r := range f.Image.Iter() {
		seen[r.Key()] = true
	}
	keys := make([]uint64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	t.Keys = keys
	idx := make(map[uint64]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}

// decodeCycleKey reverses ids.CycleID.Key's packing: (lane<<48)|(tile<<16)|cycle.
func decodeCycleKey(key uint64) ids.CycleID {
	return ids.CycleID{
		Lane:  uint16(key >> 48),
		Tile:  uint32(key>>16) & 0xffffffff,
		Cycle: uint16(key),
	}
}

func readAtCycle(info *run.Info, cycle int) (readNumber, cycleWithinRead int) {
	for _, r := range info.Reads {
		if cycle >= r.FirstCycle && cycle <= r.LastCycle {
			return r.Number, cycle - r.FirstCycle + 1
		}
	}
	return 0, 0
}

func (t *Table) setScalar(row int, id ColumnID, v float32) {
	off, ok := t.Offsets[id]
	if !ok {
		return
	}
	t.Data[row][off] = v
}

func (t *Table) fillIDColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	method := f.TileNamingMethod
	for key, row := range rowIndex {
		c := decodeCycleKey(key)
		loc := ids.DecodeTile(method, c.Tile)
		readNum, cycleWithin := readAtCycle(f.RunInfo, int(c.Cycle))
		t.setScalar(row, Lane, float32(c.Lane))
		t.setScalar(row, Tile, float32(c.Tile))
		t.setScalar(row, Cycle, float32(c.Cycle))
		t.setScalar(row, Read, float32(readNum))
		t.setScalar(row, CycleWithinRead, float32(cycleWithin))
		t.setScalar(row, Surface, float32(loc.Surface))
		t.setScalar(row, Swath, float32(loc.Swath))
		t.setScalar(row, Section, float32(loc.Section))
		t.setScalar(row, TileNumber, float32(loc.TileWithin))
	}
}

// fillTileColumns joins tile-level (non-cycle-indexed) stats onto every
// row sharing that tile, including the per-read alignment/phasing/
// prephasing percentages looked up by the row's derived read number.
func (t *Table) fillTileColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	for key, row := range rowIndex {
		c := decodeCycleKey(key)
		tileRec, ok := f.Tile.Get(ids.TileID{Lane: c.Lane, Tile: c.Tile}.Key())
		if !ok {
			continue
		}
		t.setScalar(row, DensityKPermm2, tileRec.ClusterDensity)
		t.setScalar(row, DensityPfKPermm2, tileRec.ClusterDensityPf)
		t.setScalar(row, ClusterCountK, tileRec.ClusterCount)
		t.setScalar(row, ClusterCountPfK, tileRec.ClusterCountPf)
		if tileRec.ClusterCount != 0 {
			t.setScalar(row, PercentPassFilter, tileRec.ClusterCountPf/tileRec.ClusterCount*100)
		}
		readNum, _ := readAtCycle(f.RunInfo, int(c.Cycle))
		for _, rs := range tileRec.Reads {
			if int(rs.Read) != readNum {
				continue
			}
			t.setScalar(row, PercentAligned, rs.PercentAligned)
			t.setScalar(row, PercentPhasing, rs.PercentPhasing)
			t.setScalar(row, PercentPrephasing, rs.PercentPrephasing)
			break
		}
	}
}

func (t *Table) fillErrorColumn(f *runmetrics.Facade, rowIndex map[uint64]int) {
	for _, rec := range f.Error.Iter() {
		row, ok := rowIndex[rec.Key()]
		if !ok {
			continue
		}
		t.setScalar(row, ErrorRate, rec.ErrorRate)
	}
}

func (t *Table) fillQColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	bins := metric.Bins(f.Q)
	for _, rec := range f.Q.Iter() {
		row, ok := rowIndex[rec.Key()]
		if !ok {
			continue
		}
		t.setScalar(row, PercentGreaterThanQ20, float32(metric.PercentOverQ(rec.Hist, bins, 20)*100))
		t.setScalar(row, PercentGreaterThanQ30, float32(metric.PercentOverQ(rec.Hist, bins, 30)*100))
	}
}

func (t *Table) fillExtractionColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	for _, rec := range f.Extraction.Iter() {
		row, ok := rowIndex[rec.Key()]
		if !ok {
			continue
		}
		if cells := t.Value(row, P90); cells != nil {
			for i := 0; i < len(cells) && i < len(rec.P90); i++ {
				cells[i] = float32(rec.P90[i])
			}
		}
		if cells := t.Value(row, Fwhm); cells != nil {
			for i := 0; i < len(cells) && i < len(rec.FocusScore); i++ {
				cells[i] = rec.FocusScore[i]
			}
		}
	}
}

func (t *Table) fillCorrectedIntensityColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	for _, rec := range f.CorrectedIntensity.Iter() {
		row, ok := rowIndex[rec.Key()]
		if !ok {
			continue
		}
		t.setScalar(row, PercentNoCalls, rec.PercentNoCall())
		t.setScalar(row, SignalToNoise, rec.SignalToNoise)
		if cells := t.Value(row, PercentBase); cells != nil {
			for i, b := range constants.Bases {
				cells[i] = rec.PercentBase(b)
			}
		}
		if cells := t.Value(row, Corrected); cells != nil {
			for i := range cells {
				if i < len(rec.CorrectedIntensityAll) {
					cells[i] = float32(rec.CorrectedIntensityAll[i])
				}
			}
		}
		if cells := t.Value(row, Called); cells != nil {
			for i := range cells {
				if i < len(rec.CalledIntensity) {
					cells[i] = float32(rec.CalledIntensity[i])
				}
			}
		}
	}
}

func (t *Table) fillImageColumns(f *runmetrics.Facade, rowIndex map[uint64]int) {
	for _, rec := range f.Image.Iter() {
		row, ok := rowIndex[rec.Key()]
		if !ok {
			continue
		}
		if cells := t.Value(row, MinimumContrast); cells != nil {
			for i := 0; i < len(cells) && i < len(rec.MinContrast); i++ {
				cells[i] = float32(rec.MinContrast[i])
			}
		}
		if cells := t.Value(row, MaximumContrast); cells != nil {
			for i := 0; i < len(cells) && i < len(rec.MaxContrast); i++ {
				cells[i] = float32(rec.MaxContrast[i])
			}
		}
	}
}

// round applies round-half-away-from-zero to every filled cell at its
// column's configured precision; NaN cells are left untouched.
func (t *Table) round() {
	for _, col := range t.Columns {
		if col.Precision == 0 && col.DataType != constants.ValueType {
			continue
		}
		off := t.Offsets[col.ID]
		w := columnWidth(col.ID, t.ChannelCount)
		scale := math.Pow(10, float64(col.Precision))
		for _, row := range t.Data {
			for i := off; i < off+w; i++ {
				v := row[i]
				if math.IsNaN(float64(v)) {
					continue
				}
				row[i] = float32(roundHalfAwayFromZero(float64(v)*scale) / scale)
			}
		}
	}
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v + 0.5)
	}
	return math.Floor(v + 0.5)
}
