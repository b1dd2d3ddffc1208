package ranch

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOSMSplitsWays(t *testing.T) {
	extract := NewOSMExtract(
		osm.Nodes{
			osmNode(1, -122.420, 37.770),
			osmNode(2, -122.419, 37.770),
			osmNode(3, -122.418, 37.770),
			osmNode(4, -122.417, 37.770),
			osmNode(5, -122.418, 37.771),
			osmNode(6, -122.418, 37.769),
		},
		osm.Ways{
			osmWay(10, "residential", 1, 2, 3, 4),
			osmWay(11, "primary", 5, 3, 6),
			osmWay(12, "path", 1, 5),
			osmWay(13, "bus_stop", 1, 5),
		},
	)
	src, stats, err := Normalize(extract)
	require.NoError(t, err)
	assert.Equal(t, SOURCE_OSM, src.Source)

	require.Len(t, src.Nodes, 5)
	ids := make([]osm.NodeID, len(src.Nodes))
	for i := range src.Nodes {
		ids[i] = src.Nodes[i].OSMNodeID
		assert.Equal(t, PROVENANCE_OSM, src.Nodes[i].Provenance)
	}
	assert.Equal(t, []osm.NodeID{1, 3, 4, 5, 6}, ids)

	require.Len(t, src.Links, 4)
	assert.Equal(t, osm.WayID(10), src.Links[0].OSMLinkID)
	assert.Len(t, src.Links[0].Geom, 3)
	assert.Equal(t, 0, src.Links[0].FromIdx)
	assert.Equal(t, 1, src.Links[0].ToIdx)
	assert.Equal(t, 1, src.Links[1].FromIdx)
	assert.Equal(t, 2, src.Links[1].ToIdx)
	assert.Equal(t, osm.WayID(11), src.Links[2].OSMLinkID)
	assert.Equal(t, "primary", src.Links[2].Tags.Get(SOURCE_OSM, "highway"))
	for _, link := range src.Links {
		assert.Greater(t, link.LengthMeters, 0.0)
	}

	assert.Equal(t, 4, stats.InputFeatures)
	assert.Equal(t, 2, stats.SkippedFeatures)
	assert.Equal(t, 0, stats.Malformed())
}

func TestNormalizeOSMDropsMalformed(t *testing.T) {
	extract := NewOSMExtract(
		osm.Nodes{
			osmNode(1, -122.420, 37.770),
			osmNode(2, -122.419, 37.770),
			osmNode(3, math.NaN(), 37.770),
			osmNode(4, -122.418, 95.0),
		},
		osm.Ways{
			osmWay(10, "residential", 1, 2),
			osmWay(11, "residential", 1, 3),
			osmWay(12, "residential", 2, 4),
			osmWay(13, "residential", 2, 99),
			osmWay(14, "residential", 2),
			osmWay(10, "residential", 1, 2),
		},
	)
	src, stats, err := Normalize(extract)
	require.NoError(t, err)
	assert.Len(t, src.Nodes, 2)
	assert.Len(t, src.Links, 1)
	assert.Equal(t, 2, stats.MalformedNodes)
	assert.Equal(t, 4, stats.MalformedFeatures)
	assert.Equal(t, 1, stats.DuplicateFeatures)
}

func TestNormalizeOSMCollapsesDuplicateNodes(t *testing.T) {
	extract := NewOSMExtract(
		osm.Nodes{
			osmNode(1, -122.420, 37.770),
			osmNode(2, -122.419, 37.770),
			osmNode(3, -122.419, 37.770),
			osmNode(4, -122.418, 37.770),
		},
		osm.Ways{
			osmWay(10, "residential", 1, 2),
			osmWay(11, "residential", 3, 4),
		},
	)
	src, stats, err := Normalize(extract)
	require.NoError(t, err)
	require.Len(t, src.Nodes, 3)
	assert.Equal(t, osm.NodeID(2), src.Nodes[1].OSMNodeID, "first seen node is kept")
	assert.Equal(t, 1, stats.DuplicateNodes)
	require.Len(t, src.Links, 2)
	assert.Equal(t, 1, src.Links[1].FromIdx, "link is re-pointed to the kept node")
}

func TestNormalizeSHST(t *testing.T) {
	extract := &SHSTExtract{Segments: []SHSTSegment{
		shstSegment("s1", "i1", "i2", "Residential", orb.Point{-122.420, 37.770}, orb.Point{-122.419, 37.770}),
		shstSegment("s2", "i2", "i3", "Primary", orb.Point{-122.419, 37.770}, orb.Point{-122.418, 37.770}),
		// Same intersection id, other geometry: first seen wins
		shstSegment("s3", "i3", "i1", "Primary", orb.Point{-122.4181, 37.770}, orb.Point{-122.420, 37.770}),
		shstSegment("s1", "i1", "i2", "Residential", orb.Point{-122.420, 37.770}, orb.Point{-122.419, 37.770}),
		shstSegment("s4", "i4", "i5", "Residential", orb.Point{-122.420, 37.770}),
		shstSegment("s5", "", "i5", "Residential", orb.Point{-122.420, 37.770}, orb.Point{-122.419, 37.771}),
	}}
	src, stats, err := Normalize(extract)
	require.NoError(t, err)
	assert.Equal(t, SOURCE_SHST, src.Source)
	require.Len(t, src.Nodes, 3)
	assert.Equal(t, "i1", src.Nodes[0].SHSTNodeID)
	assert.Equal(t, orb.Point{-122.418, 37.770}, src.Nodes[2].Geom)
	require.Len(t, src.Links, 3)
	assert.Equal(t, "Primary", src.Links[1].Tags.Get(SOURCE_SHST, "roadClass"))
	assert.Equal(t, 2, src.Links[2].FromIdx)
	assert.Equal(t, 0, src.Links[2].ToIdx)
	assert.Equal(t, 1, stats.DuplicateFeatures)
	assert.Equal(t, 2, stats.MalformedFeatures)
	assert.Equal(t, 6, stats.InputFeatures)
}

type unknownExtract struct{}

func (unknownExtract) Source() SourceKind { return SOURCE_OSM }

func TestNormalizeUnknownExtract(t *testing.T) {
	_, _, err := Normalize(unknownExtract{})
	assert.Error(t, err)
}
