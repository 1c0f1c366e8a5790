package metric

import "github.com/grailbio/interop/ids"

// readTileKey reads the 4-byte on-disk lane/tile key shared by every
// tile-indexed family (lane uint16, tile uint16, widened to ids.TileID's
// uint32 tile field).
func readTileKey(b []byte) ids.TileID {
	return ids.TileID{
		Lane: littleEndian.Uint16(b[0:2]),
		Tile: uint32(littleEndian.Uint16(b[2:4])),
	}
}

func writeTileKey(b []byte, id ids.TileID) {
	littleEndian.PutUint16(b[0:2], id.Lane)
	littleEndian.PutUint16(b[2:4], uint16(id.Tile))
}

// readCycleKey reads the 6-byte on-disk lane/tile/cycle key shared by
// every cycle-indexed family.
func readCycleKey(b []byte) ids.CycleID {
	return ids.CycleID{
		Lane:  littleEndian.Uint16(b[0:2]),
		Tile:  uint32(littleEndian.Uint16(b[2:4])),
		Cycle: littleEndian.Uint16(b[4:6]),
	}
}

func writeCycleKey(b []byte, id ids.CycleID) {
	littleEndian.PutUint16(b[0:2], id.Lane)
	littleEndian.PutUint16(b[2:4], uint16(id.Tile))
	littleEndian.PutUint16(b[4:6], id.Cycle)
}

const tileKeySize = 4
const cycleKeySize = 6
