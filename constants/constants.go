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

// Package constants holds the closed enumerations shared across the
// InterOp engine (metric kind, metric group, instrument type, tile-naming
// method, DNA base, surface, plot color) plus their bidirectional
// string<->value lookup tables.
package constants

// MetricType identifies a single derived or raw quantity that can be
// plotted, tabulated, or summarized.
type MetricType int

const (
	Intensity MetricType = iota
	FWHM
	PercentBase
	PercentQ20
	PercentQ30
	AccumPercentQ20
	AccumPercentQ30
	QScore
	Density
	DensityPF
	ClusterCount
	ClusterCountPF
	AlignedReadCount
	ErrorRate
	PercentPhasing
	PercentPrephasing
	PercentAligned
	CorrectedIntensity
	CalledIntensity
	SignalToNoise
	UnknownMetricType
)

var metricTypeNames = map[MetricType]string{
	Intensity:           "Intensity",
	FWHM:                "FWHM",
	PercentBase:         "% Base",
	PercentQ20:          "% >=Q20",
	PercentQ30:          "% >=Q30",
	AccumPercentQ20:     "% >=Q20 (Accum)",
	AccumPercentQ30:     "% >=Q30 (Accum)",
	QScore:              "Median QScore",
	Density:             "Cluster Density (K/mm2)",
	DensityPF:           "Density PF",
	ClusterCount:        "Clusters",
	ClusterCountPF:      "Clusters PF",
	AlignedReadCount:    "Aligned Read Count",
	ErrorRate:           "Error Rate",
	PercentPhasing:      "% Phasing",
	PercentPrephasing:   "% Prephasing",
	PercentAligned:      "% Aligned",
	CorrectedIntensity:  "Corrected Int",
	CalledIntensity:     "Called Int",
	SignalToNoise:       "Signal to Noise",
	UnknownMetricType:   "!!!!BAD!!!!",
}

// metricTypeGroups maps each metric type to the metric family that
// produces it; used by projections to dispatch on the right metric set.
var metricTypeGroups = map[MetricType]MetricGroup{
	Intensity:          Extraction,
	FWHM:                Extraction,
	PercentBase:         CorrectedInt,
	PercentQ20:          Q,
	PercentQ30:          Q,
	AccumPercentQ20:     Q,
	AccumPercentQ30:     Q,
	QScore:              Q,
	Density:             Tile,
	DensityPF:           Tile,
	ClusterCount:        Tile,
	ClusterCountPF:      Tile,
	AlignedReadCount:    Tile,
	ErrorRate:           Error,
	PercentPhasing:      Tile,
	PercentPrephasing:   Tile,
	PercentAligned:      Tile,
	CorrectedIntensity:  CorrectedInt,
	CalledIntensity:     CorrectedInt,
	SignalToNoise:       CorrectedInt,
}

// String returns the human-readable description used in plot titles and
// column headers, not the Go identifier.
func (t MetricType) String() string {
	if s, ok := metricTypeNames[t]; ok {
		return s
	}
	return "!!!!BAD!!!!"
}

// Group returns the metric family that produces values of this type.
func (t MetricType) Group() MetricGroup {
	if g, ok := metricTypeGroups[t]; ok {
		return g
	}
	return UnknownMetricGroup
}

// IsCycleMetric reports whether values of this type are indexed by cycle
// (as opposed to by lane/tile only, or by read).
func (t MetricType) IsCycleMetric() bool {
	switch t.Group() {
	case Extraction, CorrectedInt, Error, Q, Image:
		return true
	default:
		return false
	}
}

// IsReadMetric reports whether values of this type are indexed by read.
func (t MetricType) IsReadMetric() bool {
	switch t {
	case PercentAligned, PercentPhasing, PercentPrephasing:
		return true
	default:
		return false
	}
}

// MetricGroup identifies a binary InterOp family.
type MetricGroup int

const (
	CorrectedInt MetricGroup = iota
	Error
	Extraction
	Image
	Index
	Q
	Tile
	QByLane
	QCollapsed
	UnknownMetricGroup
)

var metricGroupNames = map[MetricGroup]string{
	CorrectedInt:        "CorrectedInt",
	Error:               "Error",
	Extraction:          "Extraction",
	Image:               "Image",
	Index:               "Index",
	Q:                   "Q",
	Tile:                "Tile",
	QByLane:             "QByLane",
	QCollapsed:          "QCollapsed",
	UnknownMetricGroup:  "UnknownMetricGroup",
}

func (g MetricGroup) String() string {
	if s, ok := metricGroupNames[g]; ok {
		return s
	}
	return "UnknownMetricGroup"
}

// TileNamingMethod identifies how a tile number is decoded into
// surface/swath/section/tile-within-swath.
type TileNamingMethod int

const (
	FourDigit TileNamingMethod = iota
	FiveDigit
	Absolute
	UnknownTileNamingMethod
)

var tileNamingMethodNames = map[TileNamingMethod]string{
	FourDigit:               "FourDigit",
	FiveDigit:                "FiveDigit",
	Absolute:                 "Absolute",
	UnknownTileNamingMethod:  "UnknownTileNamingMethod",
}

func (m TileNamingMethod) String() string {
	if s, ok := tileNamingMethodNames[m]; ok {
		return s
	}
	return "UnknownTileNamingMethod"
}

// ParseTileNamingMethod does the inverse string->value linear scan
// RunInfo.xml's TileNamingConvention field needs; returns
// UnknownTileNamingMethod, false if name matches nothing known.
func ParseTileNamingMethod(name string) (TileNamingMethod, bool) {
	for m, s := range tileNamingMethodNames {
		if s == name {
			return m, true
		}
	}
	return UnknownTileNamingMethod, false
}

// DNABase enumerates the four called bases plus the no-call sentinel.
type DNABase int

const (
	NC DNABase = iota - 1 // no-call, matches the C++ library's NC=-1
	A
	C
	G
	T
	NumBases        = 4
	NumBasesAndNC   = 5
	UnknownBase     = DNABase(0xff)
)

var dnaBaseNames = map[DNABase]string{
	NC: "NC",
	A:  "A",
	C:  "C",
	G:  "G",
	T:  "T",
}

func (b DNABase) String() string {
	if s, ok := dnaBaseNames[b]; ok {
		return s
	}
	return "UnknownBase"
}

// Bases lists the four called bases in canonical order (A, C, G, T) —
// the order used by every per-base column (PercentBase, Corrected, Called).
var Bases = [NumBases]DNABase{A, C, G, T}

// SurfaceType identifies top/bottom of a two-sided flowcell.
type SurfaceType int

const (
	SentinelSurface SurfaceType = iota
	Top
	Bottom
	UnknownSurface
)

func (s SurfaceType) String() string {
	switch s {
	case SentinelSurface:
		return "SentinelSurface"
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		return "UnknownSurface"
	}
}

// InstrumentType identifies the sequencer that produced the run, inferred
// from RunParameters.xml's ApplicationName by case-insensitive substring
// match (see run.Parameters.Parse).
type InstrumentType int

const (
	HiSeq InstrumentType = iota
	HiScan
	MiSeq
	NextSeq
	MiniSeq
	InstrumentCount
	UnknownInstrument
)

var instrumentTypeNames = [...]string{"HiSeq", "HiScan", "MiSeq", "NextSeq", "MiniSeq"}

func (t InstrumentType) String() string {
	if int(t) >= 0 && int(t) < len(instrumentTypeNames) {
		return instrumentTypeNames[t]
	}
	return "UnknownInstrument"
}

// InstrumentTypesInOrder returns every named instrument type in enum order,
// for the linear scan run.Parameters.Parse performs when classifying
// ApplicationName (mirrors the ≤30-entry linear-scan idiom of DESIGN NOTES
// §9, "global singletons for enum<->string mapping").
func InstrumentTypesInOrder() []InstrumentType {
	out := make([]InstrumentType, 0, len(instrumentTypeNames))
	for i := range instrumentTypeNames {
		out = append(out, InstrumentType(i))
	}
	return out
}

// PlotColor identifies the color assigned to a plotted series.
type PlotColor int

const (
	Red PlotColor = iota
	Green
	Blue
	Black
	UnknownColor
)

func (c PlotColor) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case Black:
		return "Black"
	default:
		return "UnknownColor"
	}
}

// ColorForChannel assigns the conventional Illumina channel->color mapping
// (Red, Green, Blue, Black in channel order), falling back to Black for
// channels beyond the first four (e.g. some 2-channel chemistries reuse
// this table with only the first two entries meaningful).
func ColorForChannel(channel int) PlotColor {
	switch channel {
	case 0:
		return Red
	case 1:
		return Green
	case 2:
		return Blue
	default:
		return Black
	}
}

// ColorForBase assigns a plot color to a called base, following the same
// A/C/G/T ordering as ColorForChannel.
func ColorForBase(b DNABase) PlotColor {
	switch b {
	case A:
		return Red
	case C:
		return Green
	case G:
		return Blue
	case T:
		return Black
	default:
		return UnknownColor
	}
}

// MetricDataType classifies how a table column's values are laid out in
// the row buffer: a single scalar, one value per channel, or one value
// per base.
type MetricDataType int

const (
	IDType MetricDataType = iota
	ValueType
	ChannelArray
	BaseArray
	UnknownMetricData
)
