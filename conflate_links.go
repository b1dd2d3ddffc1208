package ranch

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// linkCandidate is an open map link sharing endpoints with reference link
type linkCandidate struct {
	idx   int
	score float64
}

func conflateLinks(ctx context.Context, refLinks, osmLinks LinkTable, positions *nodePositions, opts ConflateOptions, result *ConflationResult) error {
	stats := &result.Stats.Links
	stats.Inputs = len(refLinks) + len(osmLinks)

	/* Group open map links by conflated endpoints */
	osmByPair := make(map[endpointPair][]int, len(osmLinks))
	for j := range osmLinks {
		pair := newEndpointPair(positions.osm[osmLinks[j].FromIdx], positions.osm[osmLinks[j].ToIdx])
		osmByPair[pair] = append(osmByPair[pair], j)
	}

	candidates := make([][]linkCandidate, len(refLinks))
	err := parallelFor(ctx, len(refLinks), opts.Workers, func(i int) {
		refLink := &refLinks[i]
		pair := newEndpointPair(positions.ref[refLink.FromIdx], positions.ref[refLink.ToIdx])
		for _, j := range osmByPair[pair] {
			score := overlapScore(refLink.Geom, osmLinks[j].Geom, opts.LinkBufferMeters, opts.SampleSpacingMeters)
			if score < opts.LinkOverlapThreshold {
				continue
			}
			candidates[i] = append(candidates[i], linkCandidate{idx: j, score: score})
		}
		sort.Slice(candidates[i], func(a, b int) bool {
			ca, cb := candidates[i][a], candidates[i][b]
			if ca.score != cb.score {
				return ca.score > cb.score
			}
			if osmLinks[ca.idx].OSMLinkID != osmLinks[cb.idx].OSMLinkID {
				return osmLinks[ca.idx].OSMLinkID < osmLinks[cb.idx].OSMLinkID
			}
			return ca.idx < cb.idx
		})
	})
	if err != nil {
		return errors.Wrap(err, "Can't search link candidates")
	}

	links := make(LinkTable, 0, len(refLinks)+len(osmLinks))
	emitted := make(map[endpointPair][]int, len(refLinks)+len(osmLinks))
	claimed := make([]bool, len(osmLinks))

	for i := range refLinks {
		refLink := refLinks[i]
		refLink.Tags = refLink.Tags.Clone()
		refLink.Geom = refLink.Geom.Clone()
		refLink.FromIdx = positions.ref[refLink.FromIdx]
		refLink.ToIdx = positions.ref[refLink.ToIdx]

		free := make([]linkCandidate, 0, len(candidates[i]))
		for _, candidate := range candidates[i] {
			if !claimed[candidate.idx] {
				free = append(free, candidate)
			}
		}
		if len(free) == 0 {
			stats.ReferenceOnly++
		} else {
			chosen := osmLinks[free[0].idx]
			if len(free) > 1 {
				ambiguity := AmbiguousMatch{
					Kind:        MATCH_LINK,
					ReferenceID: refLink.SHSTLinkID,
					Chosen:      chosen.OSMLinkID.FeatureID().String(),
					Candidates:  make([]string, len(free)),
				}
				for k, candidate := range free {
					ambiguity.Candidates[k] = osmLinks[candidate.idx].OSMLinkID.FeatureID().String()
				}
				result.Ambiguities = append(result.Ambiguities, ambiguity)
				stats.Ambiguous++
				opts.Logger.Debug("ambiguous link match", "reference", ambiguity.ReferenceID, "chosen", ambiguity.Chosen, "candidates", len(free))
			}
			claimed[free[0].idx] = true
			refLink = mergeLinks(refLink, chosen)
			stats.Merged++
			stats.Matched += 2
		}
		pair := newEndpointPair(refLink.FromIdx, refLink.ToIdx)
		emitted[pair] = append(emitted[pair], len(links))
		links = append(links, refLink)
	}

	for j := range osmLinks {
		if claimed[j] {
			continue
		}
		osmLink := osmLinks[j]
		osmLink.FromIdx = positions.osm[osmLink.FromIdx]
		osmLink.ToIdx = positions.osm[osmLink.ToIdx]
		pair := newEndpointPair(osmLink.FromIdx, osmLink.ToIdx)
		if duplicatesEmitted(links, emitted[pair], osmLink) {
			stats.DuplicateDropped++
			continue
		}
		osmLink.Tags = osmLink.Tags.Clone()
		osmLink.Geom = osmLink.Geom.Clone()
		emitted[pair] = append(emitted[pair], len(links))
		links = append(links, osmLink)
		stats.OpenMapOnly++
	}
	result.Links = links
	return nil
}

// duplicatesEmitted checks if link has the same geometry (in either direction) as one of emitted links with the same endpoints
func duplicatesEmitted(links LinkTable, emitted []int, link Link) bool {
	for _, k := range emitted {
		if sameLine(links[k].Geom, link.Geom) {
			return true
		}
	}
	return false
}

// mergeLinks returns link with geometry and endpoints of reference link, both identifiers and union of tags
func mergeLinks(refLink, osmLink Link) Link {
	merged := refLink
	merged.Tags = refLink.Tags.Union(osmLink.Tags)
	merged.OSMLinkID = osmLink.OSMLinkID
	merged.Provenance = PROVENANCE_BOTH
	return merged
}
