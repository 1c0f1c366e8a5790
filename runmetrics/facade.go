// Package runmetrics owns every metric set and the run descriptor for one
// sequencing run, and orchestrates the load-then-finalize pipeline that
// joins them (C6). It is the single entry point the rest of the engine
// (table and plot projection) builds on.
package runmetrics

import (
	"io"

	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/interop/constants"
	"github.com/grailbio/interop/ids"
	"github.com/grailbio/interop/interoperr"
	"github.com/grailbio/interop/metric"
	"github.com/grailbio/interop/run"
	"golang.org/x/sync/errgroup"
	"v.io/x/lib/vlog"
)

// Sources is the I/O seam Load reads through. File discovery (resolving
// a run folder into concrete file handles, trying historical secondary
// names) is an external collaborator's job, same as spec.md's scope
// carve-out for file-system scanning; Facade only ever sees bytes and
// readers. A nil family reader means that file was not found and is
// treated as an absent (non-fatal) family.
type Sources struct {
	RunInfoXML         []byte
	RunParametersXML   []byte
	CorrectedIntensity io.Reader
	Error              io.Reader
	Extraction         io.Reader
	Image              io.Reader
	Index              io.Reader
	Q                  io.Reader
	Tile               io.Reader
}

// Facade owns every metric set and the run descriptor for a single run.
// After Load returns successfully, the graph is logically immutable;
// concurrent readers are safe provided the caller's own load call
// happens-before any concurrent read (no internal locks, see SPEC_FULL
// §5).
type Facade struct {
	RunInfo          *run.Info
	RunParameters    *run.Parameters
	TileNamingMethod constants.TileNamingMethod

	CorrectedIntensity *metric.Set[metric.CorrectedIntensityRecord]
	Error              *metric.Set[metric.ErrorRecord]
	Extraction         *metric.Set[metric.ExtractionRecord]
	Image              *metric.Set[metric.ImageRecord]
	Index              *metric.Set[metric.IndexRecord]
	Q                  *metric.Set[metric.QRecord]
	QCollapsed         *metric.Set[metric.QCollapsedRecord]
	QByLane            *metric.Set[metric.QByLaneRecord]
	Tile               *metric.Set[metric.TileRecord]

	missing errorreporter.T
}

// Warnings reports the first family found missing or truncated during
// Load, if any. Neither aborts Load (SPEC_FULL §4.4 step 1); this lets
// a caller surface that degradation to a human without scanning logs.
func (f *Facade) Warnings() error {
	return f.missing.Err()
}

// Load runs the full C5->C3->C4->C6->C7 pipeline described in SPEC_FULL
// §4.4: parse RunInfo, read every binary family (in parallel via
// errgroup, each into its own Set so there's no shared mutable state
// across goroutines), infer what's missing, then finalize.
func Load(src Sources) (*Facade, error) {
	info, err := run.ParseInfo(src.RunInfoXML)
	if err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("runmetrics: parsed RunInfo, %d lanes, %d reads", info.Layout.LaneCount, len(info.Reads))

	f := &Facade{
		RunInfo:            info,
		CorrectedIntensity: metric.New[metric.CorrectedIntensityRecord](),
		Error:              metric.New[metric.ErrorRecord](),
		Extraction:         metric.New[metric.ExtractionRecord](),
		Image:              metric.New[metric.ImageRecord](),
		Index:              metric.New[metric.IndexRecord](),
		Q:                  metric.New[metric.QRecord](),
		Tile:               metric.New[metric.TileRecord](),
	}

	channelCount := len(info.Channels)
	var g errgroup.Group
	g.Go(func() error { return loadFamily(&f.missing, func() error { return metric.ReadErrorMetrics(src.Error, f.Error) }, src.Error) })
	g.Go(func() error {
		return loadFamily(&f.missing, func() error {
			return metric.ReadCorrectedIntensityMetrics(src.CorrectedIntensity, f.CorrectedIntensity)
		}, src.CorrectedIntensity)
	})
	g.Go(func() error {
		return loadFamily(&f.missing, func() error {
			return metric.ReadExtractionMetrics(src.Extraction, f.Extraction, channelCount)
		}, src.Extraction)
	})
	g.Go(func() error {
		return loadFamily(&f.missing, func() error {
			return metric.ReadImageMetrics(src.Image, f.Image, channelCount)
		}, src.Image)
	})
	g.Go(func() error {
		return loadFamily(&f.missing, func() error { return metric.ReadIndexMetrics(src.Index, f.Index) }, src.Index)
	})
	g.Go(func() error { return loadFamily(&f.missing, func() error { return metric.ReadQMetrics(src.Q, f.Q) }, src.Q) })
	g.Go(func() error {
		return loadFamily(&f.missing, func() error { return metric.ReadTileMetrics(src.Tile, f.Tile) }, src.Tile)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	namingMethod, err := resolveTileNamingMethod(info, f.Q, f.Extraction, f.Tile)
	if err != nil {
		return nil, err
	}
	f.TileNamingMethod = namingMethod

	legacyCount := metric.CountLegacyQScoreBins(f.Q)
	needsParameters := metric.RequiresLegacyBins(legacyCount) || len(info.Channels) == 0
	if needsParameters {
		params, err := run.ParseParameters(src.RunParametersXML)
		if err != nil {
			if interoperr.Is(err, interoperr.MissingFile) {
				return nil, interoperr.New(interoperr.InvalidRunInfo, "RunParameters.xml required but missing")
			}
			return nil, err
		}
		f.RunParameters = params
	}

	f.finalize(legacyCount)
	return f, nil
}

// loadFamily calls read unless reader is nil (file not found); a
// MissingFile result from read itself is likewise swallowed, since
// family absence never aborts the load (SPEC_FULL §4.4 step 1), and so
// is an IncompleteRecord result, whose records before the truncation
// point stay in the set. In every such case the first warning across
// all families is kept in missing,
// collapsing repeated per-family warnings the way
// encoding/bamprovider's errorreporter.T collapses repeated read errors
// into the one the caller eventually sees.
func loadFamily(missing *errorreporter.T, read func() error, reader io.Reader) error {
	if reader == nil {
		missing.Set(interoperr.New(interoperr.MissingFile, "family reader not supplied"))
		return nil
	}
	if err := read(); err != nil {
		if interoperr.Is(err, interoperr.MissingFile) || interoperr.Is(err, interoperr.IncompleteRecord) {
			vlog.Errorf("runmetrics: family missing or truncated: %v", err)
			missing.Set(err)
			return nil
		}
		return err
	}
	return nil
}

// resolveTileNamingMethod prefers RunInfo's declared convention; if
// absent, it tries majority-rule inference over tile numbers from Tile,
// then Extraction, then Q metrics, in that order, stopping at the first
// family that yields a concrete method — mirroring
// run_metrics::finalize_after_load's unconditional tile/extraction/q
// fallback chain (never gated on any one family's presence).
func resolveTileNamingMethod(info *run.Info, q *metric.Set[metric.QRecord], extraction *metric.Set[metric.ExtractionRecord], tile *metric.Set[metric.TileRecord]) (constants.TileNamingMethod, error) {
	if m, ok := constants.ParseTileNamingMethod(info.Layout.TileNamingConvention); ok {
		return m, nil
	}
	for _, tiles := range [][]uint32{metric.TileNumbers(tile), metric.TileNumbers(extraction), metric.TileNumbers(q)} {
		if m := ids.InferNamingMethod(tiles); m != constants.UnknownTileNamingMethod {
			return m, nil
		}
	}
	return constants.UnknownTileNamingMethod, interoperr.New(interoperr.InvalidTilingMethod, "no tile numbers available to infer naming method")
}
