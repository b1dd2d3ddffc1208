package ranch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParametersDefaults(t *testing.T) {
	params := NewParameters("/data/bay")
	require.NoError(t, params.Validate())
	assert.Equal(t, filepath.Join("/data/bay", "settings"), params.SettingsLocation())
	assert.Equal(t, filepath.Join("/data/bay", "settings", "highway_to_roadway.csv"), params.HighwayToRoadwayPath())
	assert.Equal(t, filepath.Join("/data/bay", "settings", "network_type_indicator.csv"), params.NetworkTypePath())
	assert.Equal(t, "", params.CountyBoundaryPath())
	assert.Equal(t, CountyRange{Start: 1000000, End: 1500000}, params.CountyNodeRange["San Francisco"])
	assert.Equal(t, CountyRange{Start: 1, End: 1000000}, params.CountyLinkRange["San Francisco"])

	rules := params.ClassifyRules()
	assert.Equal(t, []SourceKind{SOURCE_SHST, SOURCE_OSM}, rules.Precedence)
	assert.Equal(t, "roadClass", rules.Keys[SOURCE_SHST])
	assert.Equal(t, "highway", rules.Keys[SOURCE_OSM])
}

func TestParametersOptions(t *testing.T) {
	params := NewParameters(
		"/data/bay",
		WithSettingsLocation("/etc/ranch"),
		WithCrosswalkFiles("roadway.csv", "/abs/network.csv"),
		WithCountyBoundaryFile("counties.geojson", "COUNTY_NAME"),
		WithNodeToleranceMeters(2),
		WithLinkOverlap(0.8, 5, 2),
		WithTagPrecedence("osm"),
		WithClassifyKey("osm", "highway"),
	)
	require.NoError(t, params.Validate())
	assert.Equal(t, "/etc/ranch/roadway.csv", params.HighwayToRoadwayPath())
	assert.Equal(t, "/abs/network.csv", params.NetworkTypePath())
	assert.Equal(t, "/etc/ranch/counties.geojson", params.CountyBoundaryPath())
	assert.Equal(t, "COUNTY_NAME", params.CountyNameProperty)
	opts := params.ConflateOptions()
	assert.Equal(t, 2.0, opts.NodeToleranceMeters)
	assert.Equal(t, 0.8, opts.LinkOverlapThreshold)
	assert.Equal(t, 5.0, opts.LinkBufferMeters)
	assert.Equal(t, 2.0, opts.SampleSpacingMeters)
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		option func(*Parameters)
	}{
		{"no base dir", func(p *Parameters) { p.BaseDir = "" }},
		{"zero tolerance", WithNodeToleranceMeters(0)},
		{"threshold above one", WithLinkOverlap(1.5, 10, 5)},
		{"tiny sample spacing", WithLinkOverlap(0.6, 10, 1e-9)},
		{"unknown source", WithTagPrecedence("here")},
		{"duplicated source", WithTagPrecedence("osm", "osm")},
		{"no workers", WithWorkers(0)},
		{"missing unassigned county", WithUnassignedCounty("Nowhere")},
		{"overlapping ranges", WithCountyRanges(
			CountyRanges{"External": {Start: 1, End: 10}, "A": {Start: 5, End: 20}},
			CountyRanges{"External": {Start: 1, End: 10}},
		)},
		{"precedence without key", func(p *Parameters) {
			p.ClassifyKeys = map[string]string{"shst": "roadClass"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NewParameters("/data/bay", tt.option)
			err := params.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), err.Error())
		})
	}
}

func TestLoadParametersMissingFile(t *testing.T) {
	_, err := LoadParameters(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.True(t, errors.Is(err, os.ErrNotExist), "cause is kept")
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "can't read parameters file", configErr.Context)
}

func TestLoadParametersTOML(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "parameters.toml")
	data := `
settings_location = "conf"
node_tolerance_meters = 3.5
tag_precedence = ["osm", "shst"]
model_year = 2015

[county_node_range]
"San Francisco" = { start = 1, end = 100 }
External = { start = 100, end = 200 }

[county_link_range]
"San Francisco" = { start = 1, end = 100 }
External = { start = 100, end = 200 }
`
	require.NoError(t, os.WriteFile(fname, []byte(data), 0o644))

	params, err := LoadParameters(fname)
	require.NoError(t, err)
	require.NoError(t, params.Validate())
	assert.Equal(t, dir, params.BaseDir)
	assert.Equal(t, filepath.Join(dir, "conf"), params.SettingsLocation())
	assert.Equal(t, 3.5, params.NodeToleranceMeters)
	assert.Equal(t, []string{"osm", "shst"}, params.TagPrecedence)
	assert.Len(t, params.CountyNodeRange, 2, "ranges from file replace defaults")
	assert.Equal(t, CountyRange{Start: 100, End: 200}, params.CountyLinkRange["External"])
	assert.Equal(t, DEFAULT_LINK_OVERLAP_THRESHOLD, params.LinkOverlapThreshold, "missing options keep defaults")
	assert.Equal(t, map[string]interface{}{"model_year": int64(2015)}, params.Extra)
}

func TestLoadParametersYAML(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "parameters.yml")
	data := `
base_dir: /data/bay
unassigned_county: External
link_overlap_threshold: 0.75
classify_keys:
  shst: roadClass
  osm: highway
scenario: base
`
	require.NoError(t, os.WriteFile(fname, []byte(data), 0o644))

	params, err := LoadParameters(fname)
	require.NoError(t, err)
	require.NoError(t, params.Validate())
	assert.Equal(t, "/data/bay", params.BaseDir)
	assert.Equal(t, 0.75, params.LinkOverlapThreshold)
	assert.Equal(t, map[string]interface{}{"scenario": "base"}, params.Extra)
	assert.Len(t, params.CountyNodeRange, 11)
}

func TestLoadParametersErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadParameters(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, ErrConfig))

	fname := filepath.Join(dir, "parameters.json")
	require.NoError(t, os.WriteFile(fname, []byte(`{}`), 0o644))
	_, err = LoadParameters(fname)
	assert.True(t, errors.Is(err, ErrConfig))

	fname = filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(fname, []byte(`node_tolerance_meters = [`), 0o644))
	_, err = LoadParameters(fname)
	assert.True(t, errors.Is(err, ErrConfig))
}
