package metric

import (
	"io"

	"github.com/grailbio/interop/ids"
)

// IndexBarcode is one (index-sequence, sample-id, project, cluster-count)
// entry demultiplexed out of a tile.
type IndexBarcode struct {
	IndexSequence string
	SampleID      string
	SampleProject string
	ClusterCount  uint64
}

// IndexRecord lists every barcode demultiplexed from one tile.
type IndexRecord struct {
	ID       ids.TileID
	Barcodes []IndexBarcode
}

func (r IndexRecord) Key() uint64     { return r.ID.Key() }
func (r IndexRecord) LaneNum() uint16 { return r.ID.Lane }
func (r IndexRecord) TileNum() uint32 { return r.ID.Tile }

const indexFamily = "IndexMetrics"

// readLengthPrefixedString reads a u16 length followed by that many
// ASCII bytes, the on-disk string encoding used throughout the index
// family (sample ids and projects are short, fixed-charset fields).
func readLengthPrefixedString(r io.Reader) (string, int, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", 0, err
	}
	n := int(littleEndian.Uint16(lenBuf[:]))
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", 0, err
		}
	}
	return string(buf), 2 + n, nil
}

func writeLengthPrefixedString(w io.Writer, s string) error {
	var lenBuf [2]byte
	littleEndian.PutUint16(lenBuf[:], uint16(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadIndexMetrics parses an IndexMetricsOut.bin stream. Supported
// version: 1. Unlike the other families, records are variable length:
// tile key, u32 barcode count, then that many (sequence, sample-id,
// project, u64 cluster-count) entries, each string length-prefixed.
func ReadIndexMetrics(r io.Reader, set *Set[IndexRecord]) error {
	r, err := PrepareStream(r)
	if err != nil {
		return err
	}
	prefix, err := ReadPrefix(r)
	if err == io.EOF {
		return ErrMissingFile(indexFamily)
	}
	if err != nil {
		return err
	}
	set.Header = Header{Version: prefix.Version, RecordSize: prefix.RecordSize}
	if prefix.Version != 1 {
		return errBadVersion(indexFamily, prefix.Version)
	}

	offset := int64(2)
	for {
		keyBuf := make([]byte, tileKeySize)
		n, err := io.ReadFull(r, keyBuf)
		if err == io.EOF && n == 0 {
			return nil
		}
		if err != nil {
			return errIncomplete(indexFamily, offset)
		}
		offset += int64(tileKeySize)

		var countBuf [4]byte
		if _, err := io.ReadFull(r, countBuf[:]); err != nil {
			return errIncomplete(indexFamily, offset)
		}
		offset += 4
		count := littleEndian.Uint32(countBuf[:])

		rec := IndexRecord{ID: readTileKey(keyBuf), Barcodes: make([]IndexBarcode, 0, count)}
		for i := uint32(0); i < count; i++ {
			seq, seqLen, err := readLengthPrefixedString(r)
			if err != nil {
				return errIncomplete(indexFamily, offset)
			}
			offset += int64(seqLen)
			sampleID, idLen, err := readLengthPrefixedString(r)
			if err != nil {
				return errIncomplete(indexFamily, offset)
			}
			offset += int64(idLen)
			project, projLen, err := readLengthPrefixedString(r)
			if err != nil {
				return errIncomplete(indexFamily, offset)
			}
			offset += int64(projLen)

			var clusterBuf [8]byte
			if _, err := io.ReadFull(r, clusterBuf[:]); err != nil {
				return errIncomplete(indexFamily, offset)
			}
			offset += 8

			rec.Barcodes = append(rec.Barcodes, IndexBarcode{
				IndexSequence: seq,
				SampleID:      sampleID,
				SampleProject: project,
				ClusterCount:  littleEndian.Uint64(clusterBuf[:]),
			})
		}
		if pushErr := set.Push(rec); pushErr != nil {
			return pushErr
		}
	}
}

// WriteIndexMetrics serializes set back to the wire format.
func WriteIndexMetrics(w io.Writer, set *Set[IndexRecord]) error {
	if _, err := w.Write([]byte{set.Header.Version, set.Header.RecordSize}); err != nil {
		return err
	}
	keyBuf := make([]byte, tileKeySize)
	for _, rec := range set.Iter() {
		writeTileKey(keyBuf, rec.ID)
		if _, err := w.Write(keyBuf); err != nil {
			return err
		}
		var countBuf [4]byte
		littleEndian.PutUint32(countBuf[:], uint32(len(rec.Barcodes)))
		if _, err := w.Write(countBuf[:]); err != nil {
			return err
		}
		for _, bc := range rec.Barcodes {
			if err := writeLengthPrefixedString(w, bc.IndexSequence); err != nil {
				return err
			}
			if err := writeLengthPrefixedString(w, bc.SampleID); err != nil {
				return err
			}
			if err := writeLengthPrefixedString(w, bc.SampleProject); err != nil {
				return err
			}
			var clusterBuf [8]byte
			littleEndian.PutUint64(clusterBuf[:], bc.ClusterCount)
			if _, err := w.Write(clusterBuf[:]); err != nil {
				return err
			}
		}
	}
	return nil
}
