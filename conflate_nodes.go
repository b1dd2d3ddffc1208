package ranch

import (
	"context"

	"github.com/pkg/errors"
)

// nodePositions maps input positions of both sources to positions in conflated node table
type nodePositions struct {
	table NodeTable
	ref   []int
	osm   []int
}

func conflateNodes(ctx context.Context, refNodes, osmNodes NodeTable, opts ConflateOptions, result *ConflationResult) (*nodePositions, error) {
	stats := &result.Stats.Nodes
	stats.Inputs = len(refNodes) + len(osmNodes)

	index, err := newNodeIndex(osmNodes)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build spatial index")
	}
	candidates := make([][]nodeCandidate, len(refNodes))
	err = parallelFor(ctx, len(refNodes), opts.Workers, func(i int) {
		candidates[i] = index.within(refNodes[i].Geom, opts.NodeToleranceMeters)
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't search node candidates")
	}

	positions := &nodePositions{
		table: make(NodeTable, 0, len(refNodes)+len(osmNodes)),
		ref:   make([]int, len(refNodes)),
		osm:   make([]int, len(osmNodes)),
	}
	for j := range positions.osm {
		positions.osm[j] = -1
	}

	/* Resolve candidates sequentially in reference order */
	for i := range refNodes {
		refNode := refNodes[i]
		refNode.Tags = refNode.Tags.Clone()
		free := make([]nodeCandidate, 0, len(candidates[i]))
		for _, candidate := range candidates[i] {
			if positions.osm[candidate.idx] < 0 {
				free = append(free, candidate)
			}
		}
		outIdx := len(positions.table)
		positions.ref[i] = outIdx
		if len(free) == 0 {
			stats.ReferenceOnly++
			positions.table = append(positions.table, refNode)
			continue
		}
		chosen := osmNodes[free[0].idx]
		if len(free) > 1 {
			ambiguity := AmbiguousMatch{
				Kind:        MATCH_NODE,
				ReferenceID: refNode.SHSTNodeID,
				Chosen:      chosen.OSMNodeID.FeatureID().String(),
				Candidates:  make([]string, len(free)),
			}
			for k, candidate := range free {
				ambiguity.Candidates[k] = osmNodes[candidate.idx].OSMNodeID.FeatureID().String()
			}
			result.Ambiguities = append(result.Ambiguities, ambiguity)
			stats.Ambiguous++
			opts.Logger.Debug("ambiguous node match", "reference", ambiguity.ReferenceID, "chosen", ambiguity.Chosen, "candidates", len(free))
		}
		positions.osm[free[0].idx] = outIdx
		positions.table = append(positions.table, mergeNodes(refNode, chosen))
		stats.Merged++
		stats.Matched += 2
	}

	for j := range osmNodes {
		if positions.osm[j] >= 0 {
			continue
		}
		osmNode := osmNodes[j]
		osmNode.Tags = osmNode.Tags.Clone()
		positions.osm[j] = len(positions.table)
		positions.table = append(positions.table, osmNode)
		stats.OpenMapOnly++
	}
	result.Nodes = positions.table
	return positions, nil
}

// mergeNodes returns node with geometry of reference node, both identifiers and union of tags
func mergeNodes(refNode, osmNode Node) Node {
	merged := refNode
	merged.Tags = refNode.Tags.Union(osmNode.Tags)
	merged.OSMNodeID = osmNode.OSMNodeID
	merged.Provenance = PROVENANCE_BOTH
	return merged
}
