package metric

import (
	"io"
	"sort"

	"github.com/grailbio/interop/ids"
)

// TileReadStat holds the three per-read percentages tracked for one read
// of one tile.
type TileReadStat struct {
	Read             uint16
	PercentAligned   float32
	PercentPhasing   float32
	PercentPrephasing float32
}

// TileRecord holds cluster density/count and per-read alignment/phasing
// statistics for one tile.
type TileRecord struct {
	ID                ids.TileID
	ClusterDensity    float32
	ClusterDensityPf  float32
	ClusterCount      float32
	ClusterCountPf    float32
	Reads             []TileReadStat
}

func (r TileRecord) Key() uint64     { return r.ID.Key() }
func (r TileRecord) LaneNum() uint16 { return r.ID.Lane }
func (r TileRecord) TileNum() uint32 { return r.ID.Tile }

const tileFamily = "TileMetrics"

// Legacy v2 codes: a record is (tile key, code, f32 value) and a tile's
// full stats are assembled by merging every code-tagged record that
// shares its key, in the order the original writer used.
const (
	tileCodeClusterDensity   = 100
	tileCodeClusterDensityPf = 101
	tileCodeClusterCount     = 102
	tileCodeClusterCountPf   = 103
	tileCodePercentAlignedBase    = 200
	tileCodePercentPhasingBase    = 300
	tileCodePercentPrephasingBase = 400
)

const tileV2RecordSize = tileKeySize + 2 + 4 // key + code(u16) + value(f32)

func readStatFor(rec *TileRecord, read uint16) *TileReadStat {
	for i := range rec.Reads {
		if rec.Reads[i].Read == read {
			return &rec.Reads[i]
		}
	}
	rec.Reads = append(rec.Reads, TileReadStat{Read: read})
	return &rec.Reads[len(rec.Reads)-1]
}

// ReadTileMetrics parses a TileMetricsOut.bin stream. Supported
// versions: 2 (legacy repeated code/value records, merged by tile key
// in memory before insertion), 3 (flat fixed-prefix plus per-read
// array; read count is inferred from declared record size).
func ReadTileMetrics(r io.Reader, set *Set[TileRecord]) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(tileFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}

	switch prefix.Version {
	case 2:
		return readTileMetricsV2(r, set, prefix)
	case 3:
		return readTileMetricsV3(r, set, prefix)
	default:
		return errBadVersion(tileFamily, prefix.Version)
	}
}

func readTileMetricsV2(r io.Reader, set *Set[TileRecord], prefix Prefix) error {
	if int(prefix.RecordSize) != tileV2RecordSize {
		return errBadRecordSize(tileFamily, prefix.Version, int(prefix.RecordSize), tileV2RecordSize)
	}
	merged := make(map[uint64]*TileRecord)
	var order []uint64
	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, tileV2RecordSize)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(tileFamily, offset)
		}
		tileID := readTileKey(buf[:tileKeySize])
		code := littleEndian.Uint16(buf[tileKeySize : tileKeySize+2])
		value := readFloat32(buf[tileKeySize+2 : tileKeySize+6])

		key := tileID.Key()
		rec, ok := merged[key]
		if !ok {
			rec = &TileRecord{ID: tileID}
			merged[key] = rec
			order = append(order, key)
		}
		switch {
		case code == tileCodeClusterDensity:
			rec.ClusterDensity = value
		case code == tileCodeClusterDensityPf:
			rec.ClusterDensityPf = value
		case code == tileCodeClusterCount:
			rec.ClusterCount = value
		case code == tileCodeClusterCountPf:
			rec.ClusterCountPf = value
		case code >= tileCodePercentAlignedBase && code < tileCodePercentAlignedBase+100:
			readStatFor(rec, code-tileCodePercentAlignedBase).PercentAligned = value
		case code >= tileCodePercentPhasingBase && code < tileCodePercentPhasingBase+100:
			readStatFor(rec, code-tileCodePercentPhasingBase).PercentPhasing = value
		case code >= tileCodePercentPrephasingBase && code < tileCodePercentPrephasingBase+100:
			readStatFor(rec, code-tileCodePercentPrephasingBase).PercentPrephasing = value
		}
		offset += int64(tileV2RecordSize)
	}
	for _, key := range order {
		rec := *merged[key]
		sort.Slice(rec.Reads, func(i, j int) bool { return rec.Reads[i].Read < rec.Reads[j].Read })
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
	}
	return nil
}

const tileV3FixedSize = tileKeySize + 4*4
const tileV3ReadStatSize = 2 + 4 + 4 + 4

func readTileMetricsV3(r io.Reader, set *Set[TileRecord], prefix Prefix) error {
	recordSize := int(prefix.RecordSize)
	if recordSize < tileV3FixedSize || (recordSize-tileV3FixedSize)%tileV3ReadStatSize != 0 {
		return errBadRecordSize(tileFamily, prefix.Version, recordSize, -1)
	}
	numReads := (recordSize - tileV3FixedSize) / tileV3ReadStatSize

	offset := int64(2)
	for {
		buf, err := readRecordBytes(r, recordSize)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errIncomplete(tileFamily, offset)
		}
		rec := TileRecord{ID: readTileKey(buf[:tileKeySize])}
		off := tileKeySize
		rec.ClusterDensity = readFloat32(buf[off : off+4])
		off += 4
		rec.ClusterDensityPf = readFloat32(buf[off : off+4])
		off += 4
		rec.ClusterCount = readFloat32(buf[off : off+4])
		off += 4
		rec.ClusterCountPf = readFloat32(buf[off : off+4])
		off += 4
		rec.Reads = make([]TileReadStat, numReads)
		for i := 0; i < numReads; i++ {
			rec.Reads[i].Read = littleEndian.Uint16(buf[off : off+2])
			off += 2
			rec.Reads[i].PercentAligned = readFloat32(buf[off : off+4])
			off += 4
			rec.Reads[i].PercentPhasing = readFloat32(buf[off : off+4])
			off += 4
			rec.Reads[i].PercentPrephasing = readFloat32(buf[off : off+4])
			off += 4
		}
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
		offset += int64(recordSize)
	}
}

// WriteTileMetrics serializes set back to the wire format. Only v3's
// flat layout round-trips; v2 was merged at read time and its original
// interleaving of code/value records cannot be reconstructed.
func WriteTileMetrics(w io.Writer, set *Set[TileRecord]) error {
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	recordSize := int(set.Header.RecordSize)
	buf := make([]byte, recordSize)
	for _, rec := range set.Iter() {
		writeTileKey(buf, rec.ID)
		off := tileKeySize
		writeFloat32(buf[off:off+4], rec.ClusterDensity)
		off += 4
		writeFloat32(buf[off:off+4], rec.ClusterDensityPf)
		off += 4
		writeFloat32(buf[off:off+4], rec.ClusterCount)
		off += 4
		writeFloat32(buf[off:off+4], rec.ClusterCountPf)
		off += 4
		for _, rs := range rec.Reads {
			littleEndian.PutUint16(buf[off:off+2], rs.Read)
			off += 2
			writeFloat32(buf[off:off+4], rs.PercentAligned)
			off += 4
			writeFloat32(buf[off:off+4], rs.PercentPhasing)
			off += 4
			writeFloat32(buf[off:off+4], rs.PercentPrephasing)
			off += 4
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
