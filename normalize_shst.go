package ranch

import (
	"github.com/paulmach/orb/geo"
)

// normalizeSHST prepares nodes and links from reference segments.
// Every segment becomes a link, its from/to intersections become nodes.
func normalizeSHST(extract *SHSTExtract) (*NormalizedSource, NormalizeStats) {
	stats := NormalizeStats{
		Source: SOURCE_SHST,
	}
	collector := newNodeCollector(len(extract.Segments))
	positions := make(map[string]int, len(extract.Segments))
	links := make(LinkTable, 0, len(extract.Segments))
	segmentsSeen := make(map[string]struct{}, len(extract.Segments))

	for i := range extract.Segments {
		segment := &extract.Segments[i]
		stats.InputFeatures++
		if segment.ID == "" || segment.FromIntersectionID == "" || segment.ToIntersectionID == "" || !isValidLine(segment.Geom) {
			stats.MalformedFeatures++
			continue
		}
		if _, ok := segmentsSeen[segment.ID]; ok {
			stats.DuplicateFeatures++
			continue
		}
		lengthMeters := geo.LengthHaversign(segment.Geom)
		if lengthMeters == 0 {
			stats.MalformedLinks++
			continue
		}
		segmentsSeen[segment.ID] = struct{}{}

		nodePosition := func(intersectionID string, node Node) int {
			if idx, ok := positions[intersectionID]; ok {
				return idx
			}
			idx := collector.add(node)
			positions[intersectionID] = idx
			return idx
		}
		source := nodePosition(segment.FromIntersectionID, Node{
			Geom:       segment.Geom[0],
			Tags:       Tags{},
			SHSTNodeID: segment.FromIntersectionID,
			Provenance: provenanceOf(SOURCE_SHST),
		})
		target := nodePosition(segment.ToIntersectionID, Node{
			Geom:       segment.Geom[len(segment.Geom)-1],
			Tags:       Tags{},
			SHSTNodeID: segment.ToIntersectionID,
			Provenance: provenanceOf(SOURCE_SHST),
		})

		tags := make(Tags, len(segment.Properties))
		for key, value := range segment.Properties {
			tags[QualifiedKey(SOURCE_SHST, key)] = value
		}
		links = append(links, Link{
			Geom:         segment.Geom.Clone(),
			LengthMeters: lengthMeters,
			SHSTLinkID:   segment.ID,
			FromIdx:      source,
			ToIdx:        target,
			Tags:         tags,
			Provenance:   provenanceOf(SOURCE_SHST),
		})
	}

	stats.InputNodes = len(positions)
	stats.Nodes = len(collector.nodes)
	stats.Links = len(links)
	stats.DuplicateNodes = collector.duplicates
	return &NormalizedSource{
		Source: SOURCE_SHST,
		Nodes:  collector.nodes,
		Links:  links,
	}, stats
}
