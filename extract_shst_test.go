package ranch

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shstSample = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "id": "a1b2",
        "fromIntersectionId": "i1",
        "toIntersectionId": "i2",
        "roadClass": "Secondary",
        "lanes": 2,
        "oneway": false,
        "metadata": {"b": 1, "a": "x"}
      },
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.77], [-122.41, 37.77]]}
    },
    {
      "type": "Feature",
      "id": "c3d4",
      "properties": {"fromIntersectionId": "i2", "toIntersectionId": "i3"},
      "geometry": {"type": "Point", "coordinates": [-122.41, 37.77]}
    }
  ]
}`

func TestReadSHSTExtract(t *testing.T) {
	extract, err := ReadSHSTExtract(strings.NewReader(shstSample))
	require.NoError(t, err)
	assert.Equal(t, SOURCE_SHST, extract.Source())
	require.Len(t, extract.Segments, 2)

	segment := extract.Segments[0]
	assert.Equal(t, "a1b2", segment.ID)
	assert.Equal(t, "i1", segment.FromIntersectionID)
	assert.Equal(t, "i2", segment.ToIntersectionID)
	assert.Equal(t, orb.LineString{{-122.42, 37.77}, {-122.41, 37.77}}, segment.Geom)
	assert.Equal(t, map[string]string{
		"roadClass": "Secondary",
		"lanes":     "2",
		"oneway":    "false",
		"metadata":  `{"a":"x","b":1}`,
	}, segment.Properties)

	assert.Equal(t, "c3d4", extract.Segments[1].ID, "feature id is used when property is missing")
	assert.Nil(t, extract.Segments[1].Geom)
}

func TestReadSHSTExtractBadInput(t *testing.T) {
	_, err := ReadSHSTExtract(strings.NewReader(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}
