package ranch

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

// indexedNode is a pointer to node in the table suitable for quadtree
type indexedNode struct {
	geom orb.Point
	idx  int
}

func (node *indexedNode) Point() orb.Point {
	return node.geom
}

// nodeIndex is a read-only spatial index over node table
type nodeIndex struct {
	tree  *quadtree.Quadtree
	nodes NodeTable
}

// nodeCandidate is a node found near some point
type nodeCandidate struct {
	idx      int
	distance float64
}

func newNodeIndex(nodes NodeTable) (*nodeIndex, error) {
	bound := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	if len(nodes) > 0 {
		bound = nodes[0].Geom.Bound()
		for i := range nodes[1:] {
			bound = bound.Extend(nodes[i+1].Geom)
		}
		bound = bound.Pad(1e-6)
	}
	tree := quadtree.New(bound)
	for i := range nodes {
		err := tree.Add(&indexedNode{geom: nodes[i].Geom, idx: i})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't index node #%d", i)
		}
	}
	return &nodeIndex{tree: tree, nodes: nodes}, nil
}

// within returns nodes not further than radiusMeters (haversine) from the point.
// Candidates are sorted by distance, then by open map identifier, then by position in the table.
func (index *nodeIndex) within(pt orb.Point, radiusMeters float64) []nodeCandidate {
	found := index.tree.InBound(nil, geo.NewBoundAroundPoint(pt, radiusMeters))
	candidates := make([]nodeCandidate, 0, len(found))
	for _, pointer := range found {
		node := pointer.(*indexedNode)
		distance := geo.DistanceHaversine(pt, node.geom)
		if distance > radiusMeters {
			continue
		}
		candidates = append(candidates, nodeCandidate{idx: node.idx, distance: distance})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		osmI, osmJ := index.nodes[candidates[i].idx].OSMNodeID, index.nodes[candidates[j].idx].OSMNodeID
		if osmI != osmJ {
			return osmI < osmJ
		}
		return candidates[i].idx < candidates[j].idx
	})
	return candidates
}
