package run

import (
	"testing"

	"github.com/grailbio/interop/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRunParametersXML(appName, multiSurface string) string {
	return `<?xml version="1.0"?>
<RunParameters>
  <Version>3</Version>
  <Setup>
    <ApplicationName>` + appName + `</ApplicationName>
    <SupportMultipleSurfacesInUI>` + multiSurface + `</SupportMultipleSurfacesInUI>
  </Setup>
</RunParameters>`
}

func TestParseParametersNextSeq(t *testing.T) {
	params, err := ParseParameters([]byte(buildRunParametersXML("NextSeq Control Software", "")))
	require.NoError(t, err)
	assert.Equal(t, constants.NextSeq, params.InstrumentType)
	assert.Equal(t, 3, params.Version)
}

func TestParseParametersHiScanDisambiguation(t *testing.T) {
	params, err := ParseParameters([]byte(buildRunParametersXML("HiSeq Control Software", "false")))
	require.NoError(t, err)
	assert.Equal(t, constants.HiScan, params.InstrumentType)
}

func TestParseParametersHiSeqWithMultiSurface(t *testing.T) {
	params, err := ParseParameters([]byte(buildRunParametersXML("HiSeq Control Software", "true")))
	require.NoError(t, err)
	assert.Equal(t, constants.HiSeq, params.InstrumentType)
}

func TestParseParametersUnknown(t *testing.T) {
	params, err := ParseParameters([]byte(buildRunParametersXML("SomeOtherInstrument", "")))
	require.NoError(t, err)
	assert.Equal(t, constants.UnknownInstrument, params.InstrumentType)
}

func TestParseParametersMissingFile(t *testing.T) {
	_, err := ParseParameters(nil)
	require.Error(t, err)
}
