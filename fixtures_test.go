package ranch

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// sfBound is a rough box around San Francisco
var sfBound = orb.Bound{Min: orb.Point{-122.52, 37.70}, Max: orb.Point{-122.35, 37.83}}

func testCounties() *Counties {
	return NewCounties(County{
		Name: "San Francisco",
		Geom: orb.MultiPolygon{sfBound.ToPolygon()},
	})
}

func testCrosswalks() Crosswalks {
	return Crosswalks{
		Roadway:     DefaultRoadwayCrosswalk(DEFAULT_ROADWAY_TYPE),
		NetworkType: DefaultNetworkTypeCrosswalk(DEFAULT_NETWORK_TYPE),
	}
}

func testParameters(t *testing.T, options ...func(*Parameters)) *Parameters {
	options = append([]func(*Parameters){WithWorkers(4)}, options...)
	return NewParameters(t.TempDir(), options...)
}

func testRoadway(t *testing.T, params *Parameters) *Roadway {
	return NewRoadway(
		params,
		WithCrosswalks(testCrosswalks()),
		WithCounties(testCounties()),
		WithLogger(log.New(testWriter{t})),
	)
}

// testWriter sends log lines to test output
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func osmNode(id osm.NodeID, lon, lat float64) *osm.Node {
	return &osm.Node{ID: id, Lon: lon, Lat: lat, Visible: true}
}

func osmWay(id osm.WayID, highway string, nodeIDs ...osm.NodeID) *osm.Way {
	nodes := make(osm.WayNodes, len(nodeIDs))
	for i, nodeID := range nodeIDs {
		nodes[i] = osm.WayNode{ID: nodeID}
	}
	return &osm.Way{
		ID:    id,
		Nodes: nodes,
		Tags:  osm.Tags{{Key: "highway", Value: highway}},
	}
}

func shstSegment(id, from, to, roadClass string, pts ...orb.Point) SHSTSegment {
	return SHSTSegment{
		ID:                 id,
		FromIntersectionID: from,
		ToIntersectionID:   to,
		Geom:               orb.LineString(pts),
		Properties:         map[string]string{"roadClass": roadClass},
	}
}
