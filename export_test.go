package ranch

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() *RoadwayNetwork {
	return &RoadwayNetwork{
		Nodes: NodeTable{
			{ID: 1000000, SHSTNodeID: "i1", OSMNodeID: 1, County: "San Francisco", Geom: orb.Point{-122.42, 37.77}, Provenance: PROVENANCE_BOTH, Tags: Tags{}},
			{ID: 1000001, OSMNodeID: 2, County: "San Francisco", Geom: orb.Point{-122.41, 37.77}, Provenance: PROVENANCE_OSM, Tags: Tags{"osm:highway": "traffic_signals"}},
		},
		Links: LinkTable{{
			ID:                   1,
			FromNodeID:           1000000,
			ToNodeID:             1000001,
			SHSTLinkID:           "s1",
			County:               "San Francisco",
			RoadwayType:          "residential",
			NetworkTypeIndicator: "auto+bike+walk",
			LengthMeters:         879.5,
			Geom:                 orb.LineString{{-122.42, 37.77}, {-122.41, 37.77}},
			Provenance:           PROVENANCE_SHST,
			Tags:                 Tags{"shst:name": "Market Street"},
		}},
	}
}

func TestExportNodesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportNodesCSV(&buf, exportFixture().Nodes))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "osm_node_id", "shst_node_id", "county", "provenance", "longitude", "latitude", "geom"}, records[0])
	assert.Equal(t, []string{"1000000", "1", "i1", "San Francisco", "shst+osm", "-122.420000", "37.770000", "POINT(-122.42 37.77)"}, records[1])
	assert.Equal(t, "", records[2][2])
}

func TestExportLinksCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportLinksCSV(&buf, exportFixture().Links))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "from_node_id", records[0][1])
	link := records[1]
	assert.Equal(t, "1", link[0])
	assert.Equal(t, "1000000", link[1])
	assert.Equal(t, "1000001", link[2])
	assert.Equal(t, "", link[3], "no open map way")
	assert.Equal(t, "s1", link[4])
	assert.Equal(t, "residential", link[6])
	assert.Equal(t, "Market Street", link[10])
	assert.Equal(t, "LINESTRING(-122.42 37.77,-122.41 37.77)", link[11])
}

func TestExportLinksGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportLinksGeoJSON(&buf, exportFixture().Links))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	feature := fc.Features[0]
	assert.True(t, feature.Geometry.IsLineString())
	assert.Equal(t, "s1", feature.PropertyMustString("shst_link_id"))
	assert.Equal(t, "Market Street", feature.PropertyMustString("shst:name"))
	assert.Equal(t, 1000001, feature.PropertyMustInt("to_node_id"))
	_, hasWay := feature.Properties["osm_way_id"]
	assert.False(t, hasWay)
}

func TestExportToFiles(t *testing.T) {
	dir := t.TempDir()
	network := exportFixture()
	require.NoError(t, network.ExportToCSV(filepath.Join(dir, "bay.csv")))
	require.NoError(t, network.ExportToGeoJSON(filepath.Join(dir, "bay.geojson")))

	for _, fname := range []string{"bay_nodes.csv", "bay_links.csv", "bay_nodes.geojson", "bay_links.geojson"} {
		data, err := os.ReadFile(filepath.Join(dir, fname))
		require.NoError(t, err, fname)
		assert.NotEmpty(t, data, fname)
	}
	nodes, err := os.ReadFile(filepath.Join(dir, "bay_nodes.geojson"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(nodes), `"osm:highway":"traffic_signals"`))
}
