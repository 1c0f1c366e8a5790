// Package table builds the imaging table (C8): one row per (lane, tile,
// cycle) seen in any cycle-indexed metric set, columns assembled from a
// fixed schema taken from the column-tuple list of the system this
// engine reimplements, with per-column presence detection, offset
// assignment into a contiguous row buffer, and round-half-away-from-zero
// rounding to each column's configured precision.
package table

import (
	"regexp"
	"strings"

	"github.com/grailbio/interop/constants"
)

// ColumnID enumerates every imaging-table column in schema order.
type ColumnID int

const (
	Lane ColumnID = iota
	Tile
	Cycle
	Read
	CycleWithinRead
	DensityKPermm2
	DensityPfKPermm2
	ClusterCountK
	ClusterCountPfK
	PercentPassFilter
	PercentAligned
	PercentPhasing
	PercentPrephasing
	ErrorRate
	PercentGreaterThanQ20
	PercentGreaterThanQ30
	P90
	PercentNoCalls
	PercentBase
	Fwhm
	Corrected
	Called
	SignalToNoise
	MinimumContrast
	MaximumContrast
	Surface
	Swath
	Section
	TileNumber
	columnCount
)

// Column describes one schema entry: which family it sources from (for
// presence detection), how many float32 slots it occupies in a row, and
// how many decimal digits to round to.
type Column struct {
	ID        ColumnID
	ident     string
	Group     constants.MetricGroup // UnknownMetricGroup for id columns (always present)
	DataType  constants.MetricDataType
	Precision int
}

// Name returns the column's header string.
func (c Column) Name() string { return headerName(c.ident) }

// columnSchema is the fixed, ordered list of every imaging-table column.
var columnSchema = [columnCount]Column{
	Lane:                  {Lane, "Lane", constants.UnknownMetricGroup, constants.IDType, 0},
	Tile:                  {Tile, "Tile", constants.UnknownMetricGroup, constants.IDType, 0},
	Cycle:                 {Cycle, "Cycle", constants.UnknownMetricGroup, constants.IDType, 0},
	Read:                  {Read, "Read", constants.UnknownMetricGroup, constants.IDType, 0},
	CycleWithinRead:       {CycleWithinRead, "CycleWithinRead", constants.UnknownMetricGroup, constants.IDType, 0},
	DensityKPermm2:        {DensityKPermm2, "DensityKPermm2", constants.Tile, constants.ValueType, 1},
	DensityPfKPermm2:      {DensityPfKPermm2, "DensityPfKPermm2", constants.Tile, constants.ValueType, 1},
	ClusterCountK:         {ClusterCountK, "ClusterCountK", constants.Tile, constants.ValueType, 1},
	ClusterCountPfK:       {ClusterCountPfK, "ClusterCountPfK", constants.Tile, constants.ValueType, 1},
	PercentPassFilter:     {PercentPassFilter, "PercentPassFilter", constants.Tile, constants.ValueType, 1},
	PercentAligned:        {PercentAligned, "PercentAligned", constants.Tile, constants.ValueType, 1},
	PercentPhasing:        {PercentPhasing, "PercentPhasing", constants.Tile, constants.ValueType, 3},
	PercentPrephasing:     {PercentPrephasing, "PercentPrephasing", constants.Tile, constants.ValueType, 3},
	ErrorRate:             {ErrorRate, "ErrorRate", constants.Error, constants.ValueType, 3},
	PercentGreaterThanQ20: {PercentGreaterThanQ20, "PercentGreaterThanQ20", constants.Q, constants.ValueType, 2},
	PercentGreaterThanQ30: {PercentGreaterThanQ30, "PercentGreaterThanQ30", constants.Q, constants.ValueType, 2},
	P90:                   {P90, "P90", constants.Extraction, constants.ChannelArray, 0},
	PercentNoCalls:        {PercentNoCalls, "PercentNoCalls", constants.CorrectedInt, constants.ValueType, 1},
	PercentBase:           {PercentBase, "PercentBase", constants.CorrectedInt, constants.BaseArray, 1},
	Fwhm:                  {Fwhm, "Fwhm", constants.Extraction, constants.ChannelArray, 2},
	Corrected:             {Corrected, "Corrected", constants.CorrectedInt, constants.BaseArray, 0},
	Called:                {Called, "Called", constants.CorrectedInt, constants.BaseArray, 0},
	SignalToNoise:         {SignalToNoise, "SignalToNoise", constants.CorrectedInt, constants.ValueType, 2},
	MinimumContrast:       {MinimumContrast, "MinimumContrast", constants.Image, constants.ChannelArray, 0},
	MaximumContrast:       {MaximumContrast, "MaximumContrast", constants.Image, constants.ChannelArray, 0},
	Surface:               {Surface, "Surface", constants.UnknownMetricGroup, constants.IDType, 0},
	Swath:                 {Swath, "Swath", constants.UnknownMetricGroup, constants.IDType, 0},
	Section:               {Section, "Section", constants.UnknownMetricGroup, constants.IDType, 0},
	TileNumber:            {TileNumber, "TileNumber", constants.UnknownMetricGroup, constants.IDType, 0},
}

var camelBoundary = regexp.MustCompile(`([a-z0-9%≥])([A-Z])`)

// headerName derives a column's human-readable header from its
// identifier by a fixed set of textual substitutions: "Percent" -> "%",
// "GreaterThan" -> "≥", then CamelCase -> spaced.
func headerName(ident string) string {
	s := strings.ReplaceAll(ident, "GreaterThan", "≥")
	s = strings.ReplaceAll(s, "Percent", "%")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	return strings.TrimSpace(s)
}

// Name returns the column's header string.
func (c ColumnID) Name() string {
	return headerName(columnSchema[c].ident)
}

// Schema returns the Column descriptor for id.
func (id ColumnID) Schema() Column {
	return columnSchema[id]
}
