package ranch

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DEFAULT_SETTINGS_DIR            = "settings"
	DEFAULT_HIGHWAY_TO_ROADWAY_FILE = "highway_to_roadway.csv"
	DEFAULT_NETWORK_TYPE_FILE       = "network_type_indicator.csv"
	DEFAULT_UNASSIGNED_COUNTY       = "External"
	DEFAULT_NODE_TOLERANCE_METERS   = 5.0
	DEFAULT_LINK_OVERLAP_THRESHOLD  = 0.6
	DEFAULT_LINK_BUFFER_METERS      = 10.0
	DEFAULT_SAMPLE_SPACING_METERS   = 5.0

	// Keep in sync with validate tag of SampleSpacingMeters
	MIN_SAMPLE_SPACING_METERS = 0.1
)

var (
	validate = validator.New()
)

// Parameters is the explicit configuration of a roadway build.
// Relative file names are resolved against SettingsDir which is resolved against BaseDir.
type Parameters struct {
	// Options which are not recognized. Kept for callers, never read by the build.
	Extra map[string]interface{} `toml:"-" yaml:"-" json:"extra,omitempty"`

	CountyNodeRange CountyRanges `toml:"county_node_range" yaml:"county_node_range" json:"county_node_range" validate:"required,min=1"`
	CountyLinkRange CountyRanges `toml:"county_link_range" yaml:"county_link_range" json:"county_link_range" validate:"required,min=1"`
	// Tag key per source name used to classify links
	ClassifyKeys map[string]string `toml:"classify_keys" yaml:"classify_keys" json:"classify_keys" validate:"required,min=1,dive,keys,oneof=shst osm,endkeys,required"`

	BaseDir                       string `toml:"base_dir" yaml:"base_dir" json:"base_dir" validate:"required"`
	SettingsDir                   string `toml:"settings_location" yaml:"settings_location" json:"settings_location"`
	HighwayToRoadwayCrosswalkFile string `toml:"highway_to_roadway_crosswalk_file" yaml:"highway_to_roadway_crosswalk_file" json:"highway_to_roadway_crosswalk_file" validate:"required"`
	NetworkTypeFile               string `toml:"network_type_file" yaml:"network_type_file" json:"network_type_file" validate:"required"`
	// County boundaries (GeoJSON). Empty means every record goes to the unassigned county.
	CountyBoundaryFile string `toml:"county_boundary_file" yaml:"county_boundary_file" json:"county_boundary_file"`
	CountyNameProperty string `toml:"county_name_property" yaml:"county_name_property" json:"county_name_property" validate:"required"`
	// County which receives records outside of every boundary or without configured range
	UnassignedCounty   string `toml:"unassigned_county" yaml:"unassigned_county" json:"unassigned_county" validate:"required"`
	DefaultRoadwayType string `toml:"default_roadway_type" yaml:"default_roadway_type" json:"default_roadway_type" validate:"required"`
	DefaultNetworkType string `toml:"default_network_type" yaml:"default_network_type" json:"default_network_type" validate:"required"`

	// Source names in order of precedence for classification
	TagPrecedence []string `toml:"tag_precedence" yaml:"tag_precedence" json:"tag_precedence" validate:"required,min=1,unique,dive,oneof=shst osm"`

	NodeToleranceMeters  float64 `toml:"node_tolerance_meters" yaml:"node_tolerance_meters" json:"node_tolerance_meters" validate:"gt=0"`
	LinkOverlapThreshold float64 `toml:"link_overlap_threshold" yaml:"link_overlap_threshold" json:"link_overlap_threshold" validate:"gt=0,lte=1"`
	LinkBufferMeters     float64 `toml:"link_buffer_meters" yaml:"link_buffer_meters" json:"link_buffer_meters" validate:"gt=0"`
	SampleSpacingMeters  float64 `toml:"sample_spacing_meters" yaml:"sample_spacing_meters" json:"sample_spacing_meters" validate:"gte=0.1"`
	Workers              int     `toml:"workers" yaml:"workers" json:"workers" validate:"min=1"`
}

func (params *Parameters) String() string {
	return fmt.Sprintf(`
Roadway build parameters:
	base_dir: '%s'
	settings_location: '%s'
	highway_to_roadway_crosswalk_file: '%s'
	network_type_file: '%s'
	county_boundary_file: '%s'
	unassigned_county: '%s'
	counties (nodes/links): %d/%d
	tag_precedence: '%s'
	node_tolerance_meters: %f
	link_overlap_threshold: %f
	link_buffer_meters: %f
	sample_spacing_meters: %f
	workers: %d
	unrecognized options: %d
	`,
		params.BaseDir,
		params.SettingsLocation(),
		params.HighwayToRoadwayPath(),
		params.NetworkTypePath(),
		params.CountyBoundaryPath(),
		params.UnassignedCounty,
		len(params.CountyNodeRange),
		len(params.CountyLinkRange),
		strings.Join(params.TagPrecedence, ","),
		params.NodeToleranceMeters,
		params.LinkOverlapThreshold,
		params.LinkBufferMeters,
		params.SampleSpacingMeters,
		params.Workers,
		len(params.Extra),
	)
}

// NewParameters returns parameters with defaults of the Bay Area network
func NewParameters(baseDir string, options ...func(*Parameters)) *Parameters {
	params := defaultParameters(baseDir)
	for _, option := range options {
		option(params)
	}
	return params
}

func defaultParameters(baseDir string) *Parameters {
	return &Parameters{
		Extra:                         map[string]interface{}{},
		CountyNodeRange:               DefaultCountyNodeRanges(),
		CountyLinkRange:               DefaultCountyLinkRanges(),
		ClassifyKeys:                  map[string]string{SOURCE_SHST.String(): "roadClass", SOURCE_OSM.String(): "highway"},
		BaseDir:                       baseDir,
		SettingsDir:                   DEFAULT_SETTINGS_DIR,
		HighwayToRoadwayCrosswalkFile: DEFAULT_HIGHWAY_TO_ROADWAY_FILE,
		NetworkTypeFile:               DEFAULT_NETWORK_TYPE_FILE,
		CountyNameProperty:            DEFAULT_COUNTY_NAME_PROPERTY,
		UnassignedCounty:              DEFAULT_UNASSIGNED_COUNTY,
		DefaultRoadwayType:            DEFAULT_ROADWAY_TYPE,
		DefaultNetworkType:            DEFAULT_NETWORK_TYPE,
		TagPrecedence:                 []string{SOURCE_SHST.String(), SOURCE_OSM.String()},
		NodeToleranceMeters:           DEFAULT_NODE_TOLERANCE_METERS,
		LinkOverlapThreshold:          DEFAULT_LINK_OVERLAP_THRESHOLD,
		LinkBufferMeters:              DEFAULT_LINK_BUFFER_METERS,
		SampleSpacingMeters:           DEFAULT_SAMPLE_SPACING_METERS,
		Workers:                       runtime.NumCPU(),
	}
}

// DefaultCountyNodeRanges returns node ID ranges of Bay Area counties plus the unassigned region
func DefaultCountyNodeRanges() CountyRanges {
	return CountyRanges{
		"San Francisco":           {Start: 1000000, End: 1500000},
		"San Mateo":               {Start: 1500000, End: 2000000},
		"Santa Clara":             {Start: 2000000, End: 2500000},
		"Alameda":                 {Start: 2500000, End: 3000000},
		"Contra Costa":            {Start: 3000000, End: 3500000},
		"Solano":                  {Start: 3500000, End: 4000000},
		"Napa":                    {Start: 4000000, End: 4500000},
		"Sonoma":                  {Start: 4500000, End: 5000000},
		"Marin":                   {Start: 5000000, End: 5250000},
		"San Joaquin":             {Start: 5250000, End: 5500000},
		DEFAULT_UNASSIGNED_COUNTY: {Start: 5500000, End: 6000000},
	}
}

// DefaultCountyLinkRanges returns link ID ranges of Bay Area counties plus the unassigned region
func DefaultCountyLinkRanges() CountyRanges {
	return CountyRanges{
		"San Francisco":           {Start: 1, End: 1000000},
		"San Mateo":               {Start: 1000000, End: 2000000},
		"Santa Clara":             {Start: 2000000, End: 3000000},
		"Alameda":                 {Start: 3000000, End: 4000000},
		"Contra Costa":            {Start: 4000000, End: 5000000},
		"Solano":                  {Start: 5000000, End: 6000000},
		"Napa":                    {Start: 6000000, End: 7000000},
		"Sonoma":                  {Start: 7000000, End: 8000000},
		"Marin":                   {Start: 8000000, End: 8500000},
		"San Joaquin":             {Start: 8500000, End: 9000000},
		DEFAULT_UNASSIGNED_COUNTY: {Start: 9000000, End: 9500000},
	}
}

func WithSettingsLocation(dir string) func(*Parameters) {
	return func(params *Parameters) {
		params.SettingsDir = dir
	}
}

func WithCrosswalkFiles(highwayToRoadway, networkType string) func(*Parameters) {
	return func(params *Parameters) {
		params.HighwayToRoadwayCrosswalkFile = highwayToRoadway
		params.NetworkTypeFile = networkType
	}
}

func WithCountyBoundaryFile(fname string, nameProperty string) func(*Parameters) {
	return func(params *Parameters) {
		params.CountyBoundaryFile = fname
		if nameProperty != "" {
			params.CountyNameProperty = nameProperty
		}
	}
}

// WithCountyRanges replaces default ranges. Ranges of the unassigned county must be present.
func WithCountyRanges(nodeRanges, linkRanges CountyRanges) func(*Parameters) {
	return func(params *Parameters) {
		params.CountyNodeRange = nodeRanges
		params.CountyLinkRange = linkRanges
	}
}

func WithUnassignedCounty(name string) func(*Parameters) {
	return func(params *Parameters) {
		params.UnassignedCounty = name
	}
}

func WithDefaultLabels(roadwayType, networkType string) func(*Parameters) {
	return func(params *Parameters) {
		params.DefaultRoadwayType = roadwayType
		params.DefaultNetworkType = networkType
	}
}

func WithTagPrecedence(sources ...string) func(*Parameters) {
	return func(params *Parameters) {
		params.TagPrecedence = sources
	}
}

func WithClassifyKey(source, key string) func(*Parameters) {
	return func(params *Parameters) {
		if params.ClassifyKeys == nil {
			params.ClassifyKeys = make(map[string]string)
		}
		params.ClassifyKeys[source] = key
	}
}

func WithNodeToleranceMeters(meters float64) func(*Parameters) {
	return func(params *Parameters) {
		params.NodeToleranceMeters = meters
	}
}

// WithLinkOverlap sets minimum overlap score, buffer around a line and distance between sample points
func WithLinkOverlap(threshold, bufferMeters, spacingMeters float64) func(*Parameters) {
	return func(params *Parameters) {
		params.LinkOverlapThreshold = threshold
		params.LinkBufferMeters = bufferMeters
		params.SampleSpacingMeters = spacingMeters
	}
}

func WithWorkers(workers int) func(*Parameters) {
	return func(params *Parameters) {
		params.Workers = workers
	}
}

// SettingsLocation returns directory crosswalks and boundaries are read from
func (params *Parameters) SettingsLocation() string {
	return resolvePath(params.BaseDir, params.SettingsDir)
}

// HighwayToRoadwayPath returns resolved path of the roadway crosswalk
func (params *Parameters) HighwayToRoadwayPath() string {
	return resolvePath(params.SettingsLocation(), params.HighwayToRoadwayCrosswalkFile)
}

// NetworkTypePath returns resolved path of the network type crosswalk
func (params *Parameters) NetworkTypePath() string {
	return resolvePath(params.SettingsLocation(), params.NetworkTypeFile)
}

// CountyBoundaryPath returns resolved path of county boundaries or empty string when not configured
func (params *Parameters) CountyBoundaryPath() string {
	if params.CountyBoundaryFile == "" {
		return ""
	}
	return resolvePath(params.SettingsLocation(), params.CountyBoundaryFile)
}

func resolvePath(dir, fname string) string {
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(dir, fname)
}

// ClassifyRules returns classification rules described by parameters.
// Call Validate first: unknown source names are skipped.
func (params *Parameters) ClassifyRules() ClassifyRules {
	rules := ClassifyRules{
		Keys:       make(map[SourceKind]string, len(params.ClassifyKeys)),
		Precedence: make([]SourceKind, 0, len(params.TagPrecedence)),
	}
	for name, key := range params.ClassifyKeys {
		if source, ok := getSourceKind(name); ok {
			rules.Keys[source] = key
		}
	}
	for _, name := range params.TagPrecedence {
		if source, ok := getSourceKind(name); ok {
			rules.Precedence = append(rules.Precedence, source)
		}
	}
	return rules
}

// ConflateOptions returns matching thresholds described by parameters
func (params *Parameters) ConflateOptions() ConflateOptions {
	return ConflateOptions{
		NodeToleranceMeters:  params.NodeToleranceMeters,
		LinkOverlapThreshold: params.LinkOverlapThreshold,
		LinkBufferMeters:     params.LinkBufferMeters,
		SampleSpacingMeters:  params.SampleSpacingMeters,
		Workers:              params.Workers,
	}
}

// Validate checks parameters. Returned error wraps ErrConfig.
func (params *Parameters) Validate() error {
	if params == nil {
		return configError("parameters are not provided")
	}
	if err := validate.Struct(params); err != nil {
		return configError("%s", formatValidationError(err))
	}
	if err := params.CountyNodeRange.Validate(); err != nil {
		return wrapConfig(err, "county_node_range")
	}
	if err := params.CountyLinkRange.Validate(); err != nil {
		return wrapConfig(err, "county_link_range")
	}
	if _, ok := params.CountyNodeRange[params.UnassignedCounty]; !ok {
		return configError("county_node_range: no range for unassigned county '%s'", params.UnassignedCounty)
	}
	if _, ok := params.CountyLinkRange[params.UnassignedCounty]; !ok {
		return configError("county_link_range: no range for unassigned county '%s'", params.UnassignedCounty)
	}
	for _, source := range params.TagPrecedence {
		if _, ok := params.ClassifyKeys[source]; !ok {
			return configError("classify_keys: no key for source '%s' listed in tag_precedence", source)
		}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return err.Error()
	}
	e := validationErrs[0]
	if e.Param() != "" {
		return fmt.Sprintf("%s: failed on '%s=%s' (value '%v')", e.Namespace(), e.Tag(), e.Param(), e.Value())
	}
	return fmt.Sprintf("%s: failed on '%s' (value '%v')", e.Namespace(), e.Tag(), e.Value())
}
