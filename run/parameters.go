package run

import (
	"encoding/xml"
	"strings"

	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/interoperr"
)

// Parameters is the parsed, fixed-schema content of RunParameters.xml:
// just enough to classify the instrument that produced the run.
type Parameters struct {
	Version        int
	InstrumentType constants.InstrumentType
}

type xmlRunParameters struct {
	XMLName xml.Name `xml:"RunParameters"`
	Version int      `xml:"Version"`
	Setup   struct {
		ApplicationName              string `xml:"ApplicationName"`
		SupportMultipleSurfacesInUI  string `xml:"SupportMultipleSurfacesInUI"`
	} `xml:"Setup"`
}

// ParseParameters extracts Parameters from the raw contents of a
// RunParameters.xml file.
func ParseParameters(data []byte) (*Parameters, error) {
	if len(data) == 0 {
		return nil, interoperr.New(interoperr.MissingFile, "RunParameters.xml")
	}
	var doc xmlRunParameters
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, interoperr.Wrap(interoperr.MalformedXml, "RunParameters.xml", err)
	}
	if doc.XMLName.Local != "RunParameters" {
		return nil, interoperr.New(interoperr.MissingRequiredElement, "RunParameters.xml: root element RunParameters")
	}
	return &Parameters{
		Version:        doc.Version,
		InstrumentType: classifyInstrument(doc.Setup.ApplicationName, doc.Setup.SupportMultipleSurfacesInUI),
	}, nil
}

// classifyInstrument case-insensitively matches applicationName against
// every known instrument name by substring containment, in enum order,
// then uses supportMultipleSurfaces to disambiguate HiSeq from HiScan
// (a HiScan is a HiSeq-family application that reports it does NOT
// support multiple surfaces in the UI).
func classifyInstrument(applicationName, supportMultipleSurfaces string) constants.InstrumentType {
	appLower := strings.ToLower(applicationName)
	multiLower := strings.ToLower(supportMultipleSurfaces)

	instrument := constants.UnknownInstrument
	for _, t := range constants.InstrumentTypesInOrder() {
		name := strings.ToLower(t.String())
		if strings.Contains(appLower, name) {
			instrument = t
			break
		}
	}
	if multiLower != "" && instrument == constants.HiSeq {
		if multiLower == "0" || multiLower == "false" || multiLower == "f" {
			instrument = constants.HiScan
		}
	}
	return instrument
}
