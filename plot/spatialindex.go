package plot

import (
	"github.com/biogo/store/llrb"
	"github.com/grailbio/interop/ids"
)

// tileIndexKey orders flowcell-map cells by (lane, column), the same
// two-level ordering encoding/bampair/shard_info.go uses for its
// (refID, start) shard index.
type tileIndexKey struct {
	lane   uint16
	column uint32
	tile   ids.TileID
}

func (k tileIndexKey) Compare(c llrb.Comparable) int {
	o := c.(tileIndexKey)
	if diff := int(k.lane) - int(o.lane); diff != 0 {
		return diff
	}
	return int(k.column) - int(o.column)
}

// TileIndex maps a flowcell-map (lane, column) cell back to the tile
// that produced it, without a full scan of the originating metric set
// every time a heatmap cell needs resolving (e.g. to report "tile X is
// the outlier at row 2, column 13").
type TileIndex struct {
	tree llrb.Tree
}

// NewTileIndex returns an empty index.
func NewTileIndex() *TileIndex {
	return &TileIndex{}
}

// Insert records tile's position at (lane, column).
func (idx *TileIndex) Insert(lane uint16, column uint32, tile ids.TileID) {
	idx.tree.Insert(tileIndexKey{lane: lane, column: column, tile: tile})
}

// Lookup returns the tile at exactly (lane, column), if any.
func (idx *TileIndex) Lookup(lane uint16, column uint32) (ids.TileID, bool) {
	got := idx.tree.Get(tileIndexKey{lane: lane, column: column})
	if got == nil {
		return ids.TileID{}, false
	}
	return got.(tileIndexKey).tile, true
}

// FloorTile returns the tile at (lane, column), or failing that the
// nearest tile at or before that column within the same lane ordering
// — useful when a requested column falls in a gap (an empty swath
// boundary) and the nearest populated neighbor is an acceptable answer.
func (idx *TileIndex) FloorTile(lane uint16, column uint32) (ids.TileID, bool) {
	got := idx.tree.Floor(tileIndexKey{lane: lane, column: column})
	if got == nil {
		return ids.TileID{}, false
	}
	k := got.(tileIndexKey)
	if k.lane != lane {
		return ids.TileID{}, false
	}
	return k.tile, true
}
