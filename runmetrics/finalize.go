package runmetrics

import (
	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/metric"
)

// finalize runs SPEC_FULL §4.4's six finalization steps in their
// required order: each has data dependencies on the one before it, so
// these never run concurrently (unlike the family loads above). Step (d)
// is not idempotent: running it a second time adds each cycle's
// already-cumulative histogram onto the next cycle again.
func (f *Facade) finalize(legacyBinCount int) {
	f.synthesizeQBins(legacyBinCount) // (a)
	f.buildQCollapsed()               // (b)
	f.buildQByLane()                  // (c)
	metric.PopulateCumulativeDistribution(f.Q) // (d)
	f.backfillChannelNames()          // (e)
	f.trimExtractionChannels()        // (f)
}

func (f *Facade) synthesizeQBins(count int) {
	instrument := constants.UnknownInstrument
	if f.RunParameters != nil {
		instrument = f.RunParameters.InstrumentType
	}
	metric.PopulateLegacyQScoreBins(f.Q, instrument, count)
}

func (f *Facade) buildQCollapsed() {
	if f.QCollapsed != nil && !f.QCollapsed.IsEmpty() {
		return
	}
	f.QCollapsed = metric.BuildQCollapsed(f.Q)
}

func (f *Facade) buildQByLane() {
	f.QByLane = metric.BuildQByLane(f.Q)
}

// backfillChannelNames fills RunInfo.Channels from the instrument type
// when RunInfo.xml didn't declare any (legacy runs omitted them).
func (f *Facade) backfillChannelNames() {
	if len(f.RunInfo.Channels) > 0 || f.RunParameters == nil {
		return
	}
	f.RunInfo.Channels = channelNamesForInstrument(f.RunParameters.InstrumentType)
}

// channelNamesForInstrument returns the fixed imaging-channel order for
// instruments whose RunInfo.xml predates the ImageChannels element.
func channelNamesForInstrument(instrument constants.InstrumentType) []string {
	switch instrument {
	case constants.NextSeq, constants.MiniSeq:
		return []string{"Red", "Green"}
	default:
		return []string{"A", "C", "G", "T"}
	}
}

// trimExtractionChannels drops any extra per-channel entries beyond
// RunInfo's declared channel count, the way a short-lived beta writer
// sometimes over-allocates.
func (f *Facade) trimExtractionChannels() {
	n := len(f.RunInfo.Channels)
	if n == 0 {
		return
	}
	for _, rec := range f.Extraction.Iter() {
		if len(rec.P90) > n {
			rec.P90 = rec.P90[:n]
		}
		if len(rec.FocusScore) > n {
			rec.FocusScore = rec.FocusScore[:n]
		}
		f.Extraction.Set(rec)
	}
}
