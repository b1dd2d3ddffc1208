package ranch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
)

// normalizeOSM prepares nodes and links from open map ways.
// Ways are split into links at nodes which are used more than once (intersections) and at way's ends.
func normalizeOSM(extract *OSMExtract) (*NormalizedSource, NormalizeStats) {
	stats := NormalizeStats{
		Source: SOURCE_OSM,
	}

	nodesByID := make(map[osm.NodeID]*osm.Node, len(extract.Nodes))
	malformedNodes := make(map[osm.NodeID]struct{})
	for _, node := range extract.Nodes {
		if node == nil {
			continue
		}
		if _, ok := nodesByID[node.ID]; ok {
			continue
		}
		if !isValidPoint(node.Point()) {
			if _, ok := malformedNodes[node.ID]; !ok {
				malformedNodes[node.ID] = struct{}{}
				stats.MalformedNodes++
			}
			continue
		}
		nodesByID[node.ID] = node
	}

	/* Filter ways and count node use cases */
	ways := make([]*osm.Way, 0, len(extract.Ways))
	waysSeen := make(map[osm.WayID]struct{}, len(extract.Ways))
	useCount := make(map[osm.NodeID]int)
	for _, way := range extract.Ways {
		if way == nil {
			continue
		}
		stats.InputFeatures++
		highway := way.Tags.Find("highway")
		if highway == "" || isHighwayNegligible(highway) || isHighwayPOI(highway) {
			stats.SkippedFeatures++
			continue
		}
		// Ignore ways `area` tag provided
		if area := way.Tags.Find("area"); area != "" && area != "no" {
			stats.SkippedFeatures++
			continue
		}
		if _, ok := waysSeen[way.ID]; ok {
			stats.DuplicateFeatures++
			continue
		}
		if len(way.Nodes) < 2 || !waysNodesExist(way, nodesByID) {
			stats.MalformedFeatures++
			continue
		}
		waysSeen[way.ID] = struct{}{}
		ways = append(ways, way)
		for i, wayNode := range way.Nodes {
			if i == 0 || i == len(way.Nodes)-1 {
				useCount[wayNode.ID] += 2
			} else {
				useCount[wayNode.ID]++
			}
		}
	}

	/* Split ways into links */
	collector := newNodeCollector(len(useCount))
	positions := make(map[osm.NodeID]int, len(useCount))
	nodePosition := func(id osm.NodeID) int {
		if idx, ok := positions[id]; ok {
			return idx
		}
		node := nodesByID[id]
		idx := collector.add(Node{
			Geom:       node.Point(),
			Tags:       tagsFromOSM(SOURCE_OSM, node.Tags),
			OSMNodeID:  node.ID,
			Provenance: provenanceOf(SOURCE_OSM),
		})
		positions[id] = idx
		return idx
	}

	links := make(LinkTable, 0, len(ways))
	for _, way := range ways {
		wayTags := tagsFromOSM(SOURCE_OSM, way.Tags)
		source := nodePosition(way.Nodes[0].ID)
		geom := orb.LineString{nodesByID[way.Nodes[0].ID].Point()}
		for _, wayNode := range way.Nodes[1:] {
			pt := nodesByID[wayNode.ID].Point()
			geom = append(geom, pt)
			if useCount[wayNode.ID] < 2 {
				continue
			}
			target := nodePosition(wayNode.ID)
			lengthMeters := geo.LengthHaversign(geom)
			if lengthMeters == 0 {
				stats.MalformedLinks++
			} else {
				links = append(links, Link{
					Geom:         geom,
					LengthMeters: lengthMeters,
					OSMLinkID:    way.ID,
					FromIdx:      source,
					ToIdx:        target,
					Tags:         wayTags.Clone(),
					Provenance:   provenanceOf(SOURCE_OSM),
				})
			}
			source = target
			geom = orb.LineString{pt}
		}
	}

	stats.InputNodes = len(positions)
	stats.Nodes = len(collector.nodes)
	stats.Links = len(links)
	stats.DuplicateNodes = collector.duplicates
	return &NormalizedSource{
		Source: SOURCE_OSM,
		Nodes:  collector.nodes,
		Links:  links,
	}, stats
}

func waysNodesExist(way *osm.Way, nodesByID map[osm.NodeID]*osm.Node) bool {
	for _, wayNode := range way.Nodes {
		if _, ok := nodesByID[wayNode.ID]; !ok {
			return false
		}
	}
	return true
}
