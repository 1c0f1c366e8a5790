// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ids implements the composite identifiers (lane/tile,
// lane/tile/cycle, lane/tile/read) used as keys throughout the InterOp
// engine, their packing into 64-bit keys, and tile-number decoding.
//
// This mirrors encoding/pam's biopb.Coord keying scheme: a record's
// identity is a small value type with a deterministic Key() used both as
// a map key and as the observable sort/iteration order.
package ids

import "github.com/grailbio/interop/constants"

// TileID identifies a lane/tile pair. Lanes and tiles are 1-indexed.
type TileID struct {
	Lane uint16
	Tile uint32
}

// Key packs the TileID into a 64-bit value: (lane << 32) | tile.
func (t TileID) Key() uint64 {
	return (uint64(t.Lane) << 32) | uint64(t.Tile)
}

// CycleID identifies a lane/tile/cycle triple. Cycles are 1-indexed.
type CycleID struct {
	Lane  uint16
	Tile  uint32
	Cycle uint16
}

// Key packs the CycleID into a 64-bit value: (lane<<48)|(tile<<16)|cycle.
func (c CycleID) Key() uint64 {
	return (uint64(c.Lane) << 48) | (uint64(c.Tile) << 16) | uint64(c.Cycle)
}

// TileID drops the cycle component.
func (c CycleID) TileID() TileID {
	return TileID{Lane: c.Lane, Tile: c.Tile}
}

// ReadID identifies a lane/tile/read triple. Reads are 1-indexed.
type ReadID struct {
	Lane uint16
	Tile uint32
	Read uint16
}

// Key packs the ReadID the same way as CycleID, keyed by read number
// instead of cycle — the two id kinds are never looked up in the same
// container, so key-space overlap is harmless.
func (r ReadID) Key() uint64 {
	return (uint64(r.Lane) << 48) | (uint64(r.Tile) << 16) | uint64(r.Read)
}

// TileID drops the read component.
func (r ReadID) TileID() TileID {
	return TileID{Lane: r.Lane, Tile: r.Tile}
}

// LaneCycleKey packs a (lane, cycle) pair, used by the Q-by-lane family
// which has no tile component.
func LaneCycleKey(lane uint16, cycle uint16) uint64 {
	return (uint64(lane) << 16) | uint64(cycle)
}

// Location describes a tile number decoded into its physical coordinates.
type Location struct {
	Surface     constants.SurfaceType
	Swath       uint32
	Section     uint32
	TileWithin  uint32
}

// DecodeTile decodes a raw tile number into (surface, swath, section,
// tile-within) according to the given naming method. The decoding is
// exact:
//
//   - FourDigit: digits are SWTT (surface, swath, tile-within-swath,
//     2-digit tile index), e.g. 1101 -> surface 1, swath 1, tile 01.
//   - FiveDigit: digits are SSWTT (surface, swath, section,
//     2-digit tile index), e.g. 11216 -> surface 1, swath 1, section 2,
//     tile 16.
//   - Absolute: the tile number is used verbatim as TileWithin; surface,
//     swath and section are not derivable and are left zero.
func DecodeTile(method constants.TileNamingMethod, tile uint32) Location {
	switch method {
	case constants.FourDigit:
		return Location{
			Surface:    constants.SurfaceType(tile / 1000),
			Swath:      (tile / 100) % 10,
			TileWithin: tile % 100,
		}
	case constants.FiveDigit:
		return Location{
			Surface:    constants.SurfaceType(tile / 10000),
			Swath:      (tile / 1000) % 10,
			Section:    (tile / 100) % 10,
			TileWithin: tile % 100,
		}
	case constants.Absolute:
		return Location{TileWithin: tile}
	default:
		return Location{}
	}
}

// InferNamingMethod decides which naming method a collection of tile
// numbers is consistent with, by majority rule: for each method, decode
// every tile and compute the fraction whose surface value is 1 or 2 (a
// necessary condition for FourDigit/FiveDigit tile numbers — Absolute
// tiles rarely start with a leading 1 or 2 digit consistently). The
// method with the most internally-consistent decode wins; ties prefer
// FourDigit, then FiveDigit, then Absolute. Returns
// constants.UnknownTileNamingMethod if tiles is empty.
func InferNamingMethod(tiles []uint32) constants.TileNamingMethod {
	if len(tiles) == 0 {
		return constants.UnknownTileNamingMethod
	}
	candidates := []constants.TileNamingMethod{constants.FourDigit, constants.FiveDigit, constants.Absolute}
	bestScore := -1
	best := constants.UnknownTileNamingMethod
	for _, method := range candidates {
		score := 0
		for _, tile := range tiles {
			loc := DecodeTile(method, tile)
			if loc.Surface == constants.Top || loc.Surface == constants.Bottom {
				score++
			}
		}
		if method == constants.Absolute {
			// Absolute tiles have no surface signal; scoring zero means
			// Absolute only wins when no other method decodes any tile to
			// a valid surface.
			score = 0
		}
		if score > bestScore {
			bestScore = score
			best = method
		}
	}
	if bestScore <= 0 {
		return constants.Absolute
	}
	return best
}

// PhysicalLocationColumn maps a tile number to its column index in a
// flowcell-map matrix whose rows are lanes. The denominator depends on
// whether the caller wants both surfaces collapsed into one row set
// (allSurfaces) or a single surface's columns only.
func PhysicalLocationColumn(method constants.TileNamingMethod, sectionsPerLane, tilesPerLane uint32, swathCount uint32, tile uint32, allSurfaces bool) uint32 {
	loc := DecodeTile(method, tile)
	swathsTotal := swathCount
	if allSurfaces && (loc.Surface == constants.Top || loc.Surface == constants.Bottom) {
		swathsTotal = swathCount * 2
	}
	surfaceOffset := uint32(0)
	if allSurfaces && loc.Surface == constants.Bottom {
		surfaceOffset = swathCount
	}
	swathIdx := loc.Swath
	if swathIdx > 0 {
		swathIdx--
	}
	within := loc.TileWithin
	if within > 0 {
		within--
	}
	tilesPerSwath := tilesPerLane
	if swathsTotal > 0 {
		tilesPerSwath = tilesPerLane / swathCount
	}
	_ = sectionsPerLane
	return (surfaceOffset+swathIdx)*tilesPerSwath + within
}
