package ranch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Roadway builds uniquely identified roadway network from open map and reference extracts
type Roadway struct {
	params     *Parameters
	logger     *log.Logger
	crosswalks *Crosswalks
	counties   *Counties
	metrics    *BuildMetrics
	// Counties have been provided by caller and must not be loaded from file
	countiesProvided bool
}

// RoadwayNetwork is the result of a successful build
type RoadwayNetwork struct {
	Nodes  NodeTable
	Links  LinkTable
	Report *BuildReport
}

// NewRoadway returns roadway builder. Crosswalks and county boundaries are read from files described by parameters
// unless provided with options.
func NewRoadway(params *Parameters, options ...func(*Roadway)) *Roadway {
	rw := &Roadway{
		params: params,
		logger: log.Default(),
	}
	for _, option := range options {
		option(rw)
	}
	return rw
}

func WithLogger(logger *log.Logger) func(*Roadway) {
	return func(rw *Roadway) {
		if logger != nil {
			rw.logger = logger
		}
	}
}

func WithCrosswalks(cw Crosswalks) func(*Roadway) {
	return func(rw *Roadway) {
		rw.crosswalks = &cw
	}
}

// WithCounties provides county boundaries. Nil means no boundaries: every record goes to the unassigned county.
func WithCounties(counties *Counties) func(*Roadway) {
	return func(rw *Roadway) {
		rw.counties = counties
		rw.countiesProvided = true
	}
}

func WithMetrics(metrics *BuildMetrics) func(*Roadway) {
	return func(rw *Roadway) {
		rw.metrics = metrics
	}
}

// Build runs normalization, conflation, classification and ID allocation.
// Per-record anomalies end up in the report, structural ones abort the build with *BuildError and no output.
func (rw *Roadway) Build(ctx context.Context, osmExtract *OSMExtract, shstExtract *SHSTExtract) (*RoadwayNetwork, error) {
	report := &BuildReport{Stage: STAGE_INIT}
	fail := func(err error) (*RoadwayNetwork, error) {
		report.Status = STATUS_FATAL
		buildErr := fatal(report.Stage, err)
		rw.logger.Error("build failed", "stage", report.Stage, "err", err)
		return nil, buildErr
	}
	enter := func(stage BuildStage) (func(msg string, keyvals ...interface{}), error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Stage = stage
		st := time.Now()
		return func(msg string, keyvals ...interface{}) {
			duration := time.Since(st)
			rw.metrics.observeStage(stage, duration)
			rw.logger.Info(msg, append(keyvals, "duration", duration)...)
		}, nil
	}

	/* Init */
	done, err := enter(STAGE_INIT)
	if err != nil {
		return fail(err)
	}
	alloc, err := rw.init(osmExtract, shstExtract)
	if err != nil {
		return fail(err)
	}
	done("prepared configuration", "crosswalks", rw.crosswalks.Roadway.Len(), "counties", rw.counties.Len())

	/* Normalizing */
	done, err = enter(STAGE_NORMALIZING)
	if err != nil {
		return fail(err)
	}
	var shstSource, osmSource *NormalizedSource
	var shstStats, osmStats NormalizeStats
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		shstSource, shstStats, err = Normalize(shstExtract)
		return errors.Wrap(err, "Can't normalize reference extract")
	})
	group.Go(func() error {
		var err error
		osmSource, osmStats, err = Normalize(osmExtract)
		return errors.Wrap(err, "Can't normalize open map extract")
	})
	if err := group.Wait(); err != nil {
		return fail(err)
	}
	report.Normalize = []NormalizeStats{shstStats, osmStats}
	if len(shstSource.Nodes)+len(osmSource.Nodes) == 0 {
		return fail(errors.Wrap(ErrNoSurvivingRecords, "both extracts have no valid nodes"))
	}
	done("normalized extracts", "shst_nodes", shstStats.Nodes, "shst_links", shstStats.Links, "osm_nodes", osmStats.Nodes, "osm_links", osmStats.Links, "malformed", report.Malformed())

	/* Conflating */
	done, err = enter(STAGE_CONFLATING)
	if err != nil {
		return fail(err)
	}
	opts := rw.params.ConflateOptions()
	opts.Logger = rw.logger
	conflated, err := Conflate(ctx, shstSource, osmSource, opts)
	if err != nil {
		return fail(err)
	}
	report.Conflation = conflated.Stats
	report.Ambiguities = conflated.Ambiguities
	done("conflated sources", "merged_nodes", conflated.Stats.Nodes.Merged, "merged_links", conflated.Stats.Links.Merged, "ambiguous", conflated.Stats.Nodes.Ambiguous+conflated.Stats.Links.Ambiguous)

	/* Classifying */
	done, err = enter(STAGE_CLASSIFYING)
	if err != nil {
		return fail(err)
	}
	links, classifyStats := Classify(conflated.Links, *rw.crosswalks, rw.params.ClassifyRules())
	report.Classify = classifyStats
	for _, unmapped := range classifyStats.Unmapped {
		rw.logger.Debug("unmapped tag value", "crosswalk", unmapped.Crosswalk, "value", unmapped.Value, "links", unmapped.Count)
	}
	done("classified links", "links", len(links), "unclassified", classifyStats.Unclassified)

	/* Allocating IDs */
	done, err = enter(STAGE_ALLOCATING_IDS)
	if err != nil {
		return fail(err)
	}
	nodes := conflated.Nodes.Clone()
	err = rw.assignCounties(ctx, nodes, links, &report.Counties)
	if err != nil {
		return fail(err)
	}
	err = allocateIDs(ctx, alloc, nodes, links, rw.params.Workers)
	if err != nil {
		return fail(err)
	}
	report.HighWater = alloc.HighWaterMarks()
	done("allocated ids", "nodes", len(nodes), "links", len(links), "unresolved", report.Counties.UnresolvedNodes+report.Counties.UnresolvedLinks)

	/* Finalized */
	report.Stage = STAGE_FINALIZED
	report.Nodes = len(nodes)
	report.Links = len(links)
	report.Fingerprint = tablesFingerprint(nodes, links)
	report.Status = STATUS_SUCCESS
	if report.Malformed() > 0 {
		report.Status = STATUS_PARTIAL_FAILURE
	}
	rw.metrics.recordReport(report)
	rw.logger.Info("built roadway network", "status", report.Status, "fingerprint", report.Fingerprint)
	return &RoadwayNetwork{
		Nodes:  nodes,
		Links:  links,
		Report: report,
	}, nil
}

// init validates configuration and loads crosswalks and county boundaries
func (rw *Roadway) init(osmExtract *OSMExtract, shstExtract *SHSTExtract) (*IDAllocator, error) {
	if osmExtract == nil || shstExtract == nil {
		return nil, configError("both open map and reference extracts must be provided")
	}
	if err := rw.params.Validate(); err != nil {
		return nil, err
	}
	rw.logger.Debug("parameters", "params", rw.params.String())
	if rw.crosswalks == nil {
		roadway, err := LoadCrosswalkCSV(rw.params.HighwayToRoadwayPath(), rw.params.DefaultRoadwayType)
		if err != nil {
			return nil, wrapConfig(err, "highway_to_roadway")
		}
		networkType, err := LoadCrosswalkCSV(rw.params.NetworkTypePath(), rw.params.DefaultNetworkType)
		if err != nil {
			return nil, wrapConfig(err, "network_type_indicator")
		}
		rw.crosswalks = &Crosswalks{Roadway: roadway, NetworkType: networkType}
	}
	if rw.crosswalks.Roadway == nil || rw.crosswalks.NetworkType == nil {
		return nil, configError("both roadway and network type crosswalks must be provided")
	}
	if err := rw.crosswalks.Roadway.Validate(); err != nil {
		return nil, wrapConfig(err, "roadway crosswalk")
	}
	if err := rw.crosswalks.NetworkType.Validate(); err != nil {
		return nil, wrapConfig(err, "network type crosswalk")
	}
	if !rw.countiesProvided {
		if fname := rw.params.CountyBoundaryPath(); fname != "" {
			counties, err := LoadCountiesGeoJSON(fname, rw.params.CountyNameProperty)
			if err != nil {
				return nil, wrapConfig(err, "county boundaries")
			}
			rw.counties = counties
		} else {
			rw.logger.Warn("county boundaries are not configured, every record goes to the unassigned county", "county", rw.params.UnassignedCounty)
		}
		rw.countiesProvided = true
	}
	alloc, err := NewIDAllocator(rw.params.CountyNodeRange, rw.params.CountyLinkRange)
	if err != nil {
		return nil, wrapConfig(err, "county ranges")
	}
	return alloc, nil
}
