package ranch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BuildMetrics are counters of roadway builds registered in a prometheus registry
type BuildMetrics struct {
	registry *prometheus.Registry

	RecordsTotal  *prometheus.CounterVec
	IDHighWater   *prometheus.GaugeVec
	StageDuration *prometheus.HistogramVec
}

// NewBuildMetrics registers build metrics in given registry. New registry is created when nil is given.
func NewBuildMetrics(registry *prometheus.Registry) *BuildMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &BuildMetrics{registry: registry}
	m.RecordsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranch_records_total",
			Help: "Number of records by build stage, kind and outcome",
		},
		[]string{"stage", "kind", "outcome"},
	)
	m.IDHighWater = promauto.With(registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranch_id_high_water",
			Help: "Highest issued ID per county and kind",
		},
		[]string{"county", "kind"},
	)
	m.StageDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranch_stage_duration_seconds",
			Help:    "Duration of build stages in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		},
		[]string{"stage"},
	)
	return m
}

// Registry returns registry metrics are registered in
func (m *BuildMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes current metrics in text exposition format (node exporter textfile collector)
func (m *BuildMetrics) WriteToTextfile(fname string) error {
	return prometheus.WriteToTextfile(fname, m.registry)
}

func (m *BuildMetrics) observeStage(stage BuildStage, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage.String()).Observe(duration.Seconds())
}

func (m *BuildMetrics) addRecords(stage BuildStage, kind IDKind, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsTotal.WithLabelValues(stage.String(), kind.String(), outcome).Add(float64(n))
}

func (m *BuildMetrics) recordReport(report *BuildReport) {
	if m == nil {
		return
	}
	for _, stats := range report.Normalize {
		m.addRecords(STAGE_NORMALIZING, ID_NODE, "kept", stats.Nodes)
		m.addRecords(STAGE_NORMALIZING, ID_LINK, "kept", stats.Links)
		m.addRecords(STAGE_NORMALIZING, ID_NODE, "duplicate", stats.DuplicateNodes)
		m.addRecords(STAGE_NORMALIZING, ID_LINK, "duplicate", stats.DuplicateFeatures)
		m.addRecords(STAGE_NORMALIZING, ID_NODE, "malformed", stats.MalformedNodes)
		m.addRecords(STAGE_NORMALIZING, ID_LINK, "malformed", stats.MalformedFeatures+stats.MalformedLinks)
	}
	for _, kindStats := range []struct {
		stats MatchStats
		kind  IDKind
	}{{report.Conflation.Nodes, ID_NODE}, {report.Conflation.Links, ID_LINK}} {
		m.addRecords(STAGE_CONFLATING, kindStats.kind, "merged", kindStats.stats.Merged)
		m.addRecords(STAGE_CONFLATING, kindStats.kind, "reference_only", kindStats.stats.ReferenceOnly)
		m.addRecords(STAGE_CONFLATING, kindStats.kind, "openmap_only", kindStats.stats.OpenMapOnly)
		m.addRecords(STAGE_CONFLATING, kindStats.kind, "ambiguous", kindStats.stats.Ambiguous)
		m.addRecords(STAGE_CONFLATING, kindStats.kind, "duplicate", kindStats.stats.DuplicateDropped)
	}
	m.addRecords(STAGE_CLASSIFYING, ID_LINK, "unclassified", report.Classify.Unclassified)
	m.addRecords(STAGE_ALLOCATING_IDS, ID_NODE, "unresolved_county", report.Counties.UnresolvedNodes)
	m.addRecords(STAGE_ALLOCATING_IDS, ID_LINK, "unresolved_county", report.Counties.UnresolvedLinks)
	m.addRecords(STAGE_ALLOCATING_IDS, ID_NODE, "unknown_county", report.Counties.UnknownNodes)
	m.addRecords(STAGE_ALLOCATING_IDS, ID_LINK, "unknown_county", report.Counties.UnknownLinks)
	for _, mark := range report.HighWater {
		if mark.Issued == 0 {
			continue
		}
		m.IDHighWater.WithLabelValues(mark.County, mark.Kind.String()).Set(float64(mark.HighWater))
	}
}
