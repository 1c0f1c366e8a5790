// Package run parses the two XML descriptors that accompany an InterOp
// directory (RunInfo.xml and RunParameters.xml) into the fixed schema
// the rest of the engine needs: flowcell layout, channel names, reads,
// and instrument type.
//
// encoding/xml (Go standard library) is used here; no XML library
// appears anywhere in the retrieval pack this module was grounded on,
// so this is the one ambient concern built on the standard library
// rather than an ecosystem package (see DESIGN.md).
package run

import (
	"encoding/xml"

	"github.com/grailbio/interop/interoperr"
)

// ReadInfo describes one sequencing read as declared in RunInfo.xml.
type ReadInfo struct {
	Number        int
	NumCycles     int
	FirstCycle    int
	LastCycle     int
	IsIndexedRead bool
}

// FlowcellLayout describes the physical tile grid.
type FlowcellLayout struct {
	LaneCount            int
	SurfaceCount         int
	SwathCount           int
	TileCount            int
	SectionPerLane       int
	TileNamingConvention string
	FlowcellBarcode      string
}

// Info is the parsed, fixed-schema content of RunInfo.xml.
type Info struct {
	Version  int
	Layout   FlowcellLayout
	Reads    []ReadInfo
	Channels []string
}

type xmlRunInfo struct {
	XMLName xml.Name `xml:"RunInfo"`
	Run     struct {
		Reads struct {
			Read []struct {
				Number        int    `xml:"Number,attr"`
				NumCycles     int    `xml:"NumCycles,attr"`
				IsIndexedRead string `xml:"IsIndexedRead,attr"`
			} `xml:"Read"`
		} `xml:"Reads"`
		FlowcellLayout struct {
			LaneCount            int    `xml:"LaneCount,attr"`
			SurfaceCount         int    `xml:"SurfaceCount,attr"`
			SwathCount           int    `xml:"SwathCount,attr"`
			TileCount            int    `xml:"TileCount,attr"`
			SectionPerLane       int    `xml:"SectionPerLane,attr"`
			TileNamingConvention string `xml:"TileSet>TileNamingConvention"`
			FlowcellBarcode      string `xml:"FlowcellBarcode"`
		} `xml:"FlowcellLayout"`
		ImageChannels []string `xml:"ImageChannels>Name"`
	} `xml:"Run"`
}

// ParseInfo extracts Info from the raw contents of a RunInfo.xml file.
func ParseInfo(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, interoperr.New(interoperr.MissingFile, "RunInfo.xml")
	}
	var doc xmlRunInfo
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, interoperr.Wrap(interoperr.MalformedXml, "RunInfo.xml", err)
	}
	if doc.XMLName.Local != "RunInfo" {
		return nil, interoperr.New(interoperr.MissingRequiredElement, "RunInfo.xml: root element RunInfo")
	}
	if doc.Run.FlowcellLayout.LaneCount == 0 {
		return nil, interoperr.New(interoperr.MissingRequiredElement, "RunInfo.xml: Run/FlowcellLayout")
	}

	info := &Info{
		Layout: FlowcellLayout{
			LaneCount:            doc.Run.FlowcellLayout.LaneCount,
			SurfaceCount:         doc.Run.FlowcellLayout.SurfaceCount,
			SwathCount:           doc.Run.FlowcellLayout.SwathCount,
			TileCount:            doc.Run.FlowcellLayout.TileCount,
			SectionPerLane:       doc.Run.FlowcellLayout.SectionPerLane,
			TileNamingConvention: doc.Run.FlowcellLayout.TileNamingConvention,
			FlowcellBarcode:      doc.Run.FlowcellLayout.FlowcellBarcode,
		},
		Channels: doc.Run.ImageChannels,
	}
	cycle := 1
	for _, r := range doc.Run.Reads.Read {
		info.Reads = append(info.Reads, ReadInfo{
			Number:        r.Number,
			NumCycles:     r.NumCycles,
			FirstCycle:    cycle,
			LastCycle:     cycle + r.NumCycles - 1,
			IsIndexedRead: r.IsIndexedRead == "Y" || r.IsIndexedRead == "1" || r.IsIndexedRead == "true",
		})
		cycle += r.NumCycles
	}
	if err := validateReadCycles(info.Reads); err != nil {
		return nil, err
	}
	return info, nil
}

// validateReadCycles enforces the invariant that read cycles partition
// [1, total_cycles] without gaps, in declaration order.
func validateReadCycles(reads []ReadInfo) error {
	for _, r := range reads {
		if r.NumCycles <= 0 {
			return interoperr.New(interoperr.InvalidRunInfo, "RunInfo.xml: read with non-positive cycle count")
		}
	}
	return nil
}

// TotalCycles returns the sum of every read's cycle count.
func (i *Info) TotalCycles() int {
	total := 0
	for _, r := range i.Reads {
		total += r.NumCycles
	}
	return total
}
