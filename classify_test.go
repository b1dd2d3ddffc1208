package ranch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	links := LinkTable{
		{SHSTLinkID: "s1", Tags: Tags{"shst:roadClass": "Motorway", "osm:highway": "residential"}},
		{OSMLinkID: 2, Tags: Tags{"osm:highway": " Footway "}},
		{SHSTLinkID: "s3", Tags: Tags{"shst:roadClass": "", "osm:highway": "primary"}},
		{SHSTLinkID: "s4", Tags: Tags{"shst:roadClass": "hovercraft"}},
		{OSMLinkID: 5, Tags: Tags{"osm:name": "Market Street"}},
	}
	classified, stats := Classify(links, testCrosswalks(), DefaultClassifyRules())
	require.Len(t, classified, len(links))

	assert.Equal(t, "motorway", classified[0].RoadwayType, "reference tag wins")
	assert.Equal(t, "auto", classified[0].NetworkTypeIndicator)
	assert.Equal(t, "footway", classified[1].RoadwayType)
	assert.Equal(t, "walk", classified[1].NetworkTypeIndicator)
	assert.Equal(t, "primary", classified[2].RoadwayType, "empty values fall through")
	assert.Equal(t, DEFAULT_ROADWAY_TYPE, classified[3].RoadwayType)
	assert.Equal(t, DEFAULT_NETWORK_TYPE, classified[3].NetworkTypeIndicator)
	assert.Equal(t, DEFAULT_ROADWAY_TYPE, classified[4].RoadwayType)

	for _, link := range classified {
		assert.NotEmpty(t, link.RoadwayType)
		assert.NotEmpty(t, link.NetworkTypeIndicator)
	}
	assert.Equal(t, 2, stats.Unclassified)
	assert.Equal(t, 1, stats.Untagged)
	assert.Equal(t, []UnmappedValue{
		{Crosswalk: "default_highway_to_roadway", Value: "", Count: 1},
		{Crosswalk: "default_highway_to_roadway", Value: "hovercraft", Count: 1},
		{Crosswalk: "default_network_type_indicator", Value: "", Count: 1},
		{Crosswalk: "default_network_type_indicator", Value: "hovercraft", Count: 1},
	}, stats.Unmapped)

	// Input is untouched
	assert.Empty(t, links[0].RoadwayType)
}

func TestClassifyPrecedence(t *testing.T) {
	links := LinkTable{
		{Tags: Tags{"shst:roadClass": "Motorway", "osm:highway": "residential"}},
	}
	rules := DefaultClassifyRules()
	rules.Precedence = []SourceKind{SOURCE_OSM, SOURCE_SHST}
	classified, stats := Classify(links, testCrosswalks(), rules)
	assert.Equal(t, "residential", classified[0].RoadwayType)
	assert.Equal(t, 0, stats.Unclassified)
}

func TestClassifyFallsThroughUnknownValue(t *testing.T) {
	links := LinkTable{
		{SHSTLinkID: "s1", OSMLinkID: 1, Tags: Tags{"shst:roadClass": "Other", "osm:highway": "residential"}},
		{SHSTLinkID: "s2", OSMLinkID: 2, Tags: Tags{"shst:roadClass": "Other", "osm:highway": "hovercraft"}},
	}
	classified, stats := Classify(links, testCrosswalks(), DefaultClassifyRules())
	assert.Equal(t, "residential", classified[0].RoadwayType, "open map value is used when reference value is unknown")
	assert.Equal(t, DEFAULT_ROADWAY_TYPE, classified[1].RoadwayType)
	assert.Equal(t, 1, stats.Unclassified)
	assert.Equal(t, 0, stats.Untagged)
	// Audit names the value of the highest precedence source
	assert.Equal(t, "other", stats.Unmapped[0].Value)
}

func TestClassifyRejectsEmptyLabel(t *testing.T) {
	_, err := ReadCrosswalkCSV(strings.NewReader("highway,roadway\nresidential,\nprimary,primary\n"), "roadway", DEFAULT_ROADWAY_TYPE)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
