package plot

import "math"

const plotTestRunInfo = `<?xml version="1.0"?>
<RunInfo>
  <Run Id="r1" Number="1">
    <Reads>
      <Read Number="1" NumCycles="3" IsIndexedRead="N" />
    </Reads>
    <FlowcellLayout LaneCount="2" SurfaceCount="1" SwathCount="1" TileCount="1" SectionPerLane="1">
      <TileSet><TileNamingConvention>FourDigit</TileNamingConvention></TileSet>
    </FlowcellLayout>
    <ImageChannels>
      <Name>A</Name>
      <Name>C</Name>
    </ImageChannels>
  </Run>
</RunInfo>`

func le16(buf []byte, off int, v uint16) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

func le32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func le64(buf []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(v >> (8 * i))
	}
}

func leFloat(buf []byte, off int, v float32) {
	le32(buf, off, math.Float32bits(v))
}

type tileEntry struct {
	lane, tile uint16
	density    float32
}

func buildTileV2Bytes(entries []tileEntry) []byte {
	const recSize = 10
	buf := make([]byte, 2, 2+recSize*4*len(entries))
	buf[0] = 2
	buf[1] = recSize
	codes := []uint16{100, 101, 102, 103}
	for _, e := range entries {
		values := []float32{e.density, e.density * 0.9, 1_000_000, 900_000}
		for i, code := range codes {
			rec := make([]byte, recSize)
			le16(rec, 0, e.lane)
			le16(rec, 2, e.tile)
			le16(rec, 4, code)
			leFloat(rec, 6, values[i])
			buf = append(buf, rec...)
		}
	}
	return buf
}

type errorEntry struct {
	lane, tile, cycle uint16
	rate              float32
}

func buildErrorV4Bytes(records []errorEntry) []byte {
	const recSize = 10
	buf := make([]byte, 2, 2+recSize*len(records))
	buf[0] = 4
	buf[1] = recSize
	for _, r := range records {
		rec := make([]byte, recSize)
		le16(rec, 0, r.lane)
		le16(rec, 2, r.tile)
		le16(rec, 4, r.cycle)
		leFloat(rec, 6, r.rate)
		buf = append(buf, rec...)
	}
	return buf
}

type qEntry struct {
	lane, tile, cycle uint16
	idxs              []int // histogram bin indices to bump by 100 each
}

func buildQV4Bytes(records []qEntry) []byte {
	const binCount = 50
	const recSize = 6 + 4*binCount
	buf := make([]byte, 2, 2+recSize*len(records))
	buf[0] = 4
	buf[1] = recSize
	for _, r := range records {
		rec := make([]byte, recSize)
		le16(rec, 0, r.lane)
		le16(rec, 2, r.tile)
		le16(rec, 4, r.cycle)
		for _, idx := range r.idxs {
			le32(rec, 6+4*idx, 100)
		}
		buf = append(buf, rec...)
	}
	return buf
}

type indexBarcodeEntry struct {
	seq, sampleID, project string
	clusterCount           uint64
}

type indexEntry struct {
	lane, tile uint16
	barcodes   []indexBarcodeEntry
}

func appendLengthPrefixed(buf []byte, s string) []byte {
	lenBuf := make([]byte, 2)
	le16(lenBuf, 0, uint16(len(s)))
	buf = append(buf, lenBuf...)
	return append(buf, []byte(s)...)
}

func buildIndexV1Bytes(records []indexEntry) []byte {
	buf := make([]byte, 2)
	buf[0] = 1
	buf[1] = 0
	for _, r := range records {
		keyBuf := make([]byte, 4)
		le16(keyBuf, 0, r.lane)
		le16(keyBuf, 2, r.tile)
		buf = append(buf, keyBuf...)
		countBuf := make([]byte, 4)
		le32(countBuf, 0, uint32(len(r.barcodes)))
		buf = append(buf, countBuf...)
		for _, bc := range r.barcodes {
			buf = appendLengthPrefixed(buf, bc.seq)
			buf = appendLengthPrefixed(buf, bc.sampleID)
			buf = appendLengthPrefixed(buf, bc.project)
			clusterBuf := make([]byte, 8)
			le64(clusterBuf, 0, bc.clusterCount)
			buf = append(buf, clusterBuf...)
		}
	}
	return buf
}
