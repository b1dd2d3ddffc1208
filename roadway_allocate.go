package ranch

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// assignCounties fills county of every node (by its point) and link (by middle point of its geometry).
// Records outside of every county and records of counties without configured range go to the unassigned county.
func (rw *Roadway) assignCounties(ctx context.Context, nodes NodeTable, links LinkTable, stats *CountyStats) error {
	nodeResolved := make([]bool, len(nodes))
	linkResolved := make([]bool, len(links))
	err := parallelFor(ctx, len(nodes), rw.params.Workers, func(i int) {
		nodes[i].County, nodeResolved[i] = rw.counties.Resolve(nodes[i].Geom)
	})
	if err != nil {
		return errors.Wrap(err, "Can't resolve counties of nodes")
	}
	err = parallelFor(ctx, len(links), rw.params.Workers, func(i int) {
		links[i].County, linkResolved[i] = rw.counties.ResolveLine(links[i].Geom)
	})
	if err != nil {
		return errors.Wrap(err, "Can't resolve counties of links")
	}

	unknown := make(map[string]struct{})
	unassigned := rw.params.UnassignedCounty
	for i := range nodes {
		switch {
		case !nodeResolved[i]:
			stats.UnresolvedNodes++
			nodes[i].County = unassigned
		default:
			if _, ok := rw.params.CountyNodeRange[nodes[i].County]; !ok {
				stats.UnknownNodes++
				unknown[nodes[i].County] = struct{}{}
				rw.logger.Debug("county has no node range", "county", nodes[i].County, "node", nodes[i].ExternalID())
				nodes[i].County = unassigned
			}
		}
	}
	for i := range links {
		switch {
		case !linkResolved[i]:
			stats.UnresolvedLinks++
			links[i].County = unassigned
		default:
			if _, ok := rw.params.CountyLinkRange[links[i].County]; !ok {
				stats.UnknownLinks++
				unknown[links[i].County] = struct{}{}
				rw.logger.Debug("county has no link range", "county", links[i].County)
				links[i].County = unassigned
			}
		}
	}
	if len(unknown) > 0 {
		stats.Unknown = make([]string, 0, len(unknown))
		for name := range unknown {
			stats.Unknown = append(stats.Unknown, name)
		}
		sort.Strings(stats.Unknown)
	}
	return nil
}

// allocationPartition is a list of record positions sharing county and kind, in table order
type allocationPartition struct {
	key       partitionKey
	positions []int
}

// allocateIDs issues IDs to every node and link. Each (county, kind) partition is handled by its own goroutine
// walking records in table order, so result does not depend on scheduling.
func allocateIDs(ctx context.Context, alloc *IDAllocator, nodes NodeTable, links LinkTable, workers int) error {
	partitions := make([]*allocationPartition, 0)
	byKey := make(map[partitionKey]*allocationPartition)
	add := func(key partitionKey, position int) {
		partition, ok := byKey[key]
		if !ok {
			partition = &allocationPartition{key: key}
			byKey[key] = partition
			partitions = append(partitions, partition)
		}
		partition.positions = append(partition.positions, position)
	}
	for i := range nodes {
		add(partitionKey{nodes[i].County, ID_NODE}, i)
	}
	for i := range links {
		add(partitionKey{links[i].County, ID_LINK}, i)
	}
	sort.Slice(partitions, func(i, j int) bool {
		if partitions[i].key.kind != partitions[j].key.kind {
			return partitions[i].key.kind < partitions[j].key.kind
		}
		return partitions[i].key.county < partitions[j].key.county
	})

	errs := make([]error, len(partitions))
	// Partitions do not cancel each other: every exhausted partition gets the same chance to fail
	var group errgroup.Group
	if workers > 0 {
		group.SetLimit(workers)
	}
	for p, partition := range partitions {
		p, partition := p, partition
		group.Go(func() error {
			for _, i := range partition.positions {
				if err := ctx.Err(); err != nil {
					return err
				}
				id, err := alloc.Allocate(partition.key.county, partition.key.kind)
				if err != nil {
					errs[p] = err
					return err
				}
				switch partition.key.kind {
				case ID_NODE:
					nodes[i].ID = NodeID(id)
				case ID_LINK:
					links[i].ID = LinkID(id)
				}
			}
			return nil
		})
	}
	waitErr := group.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	if waitErr != nil {
		return errors.Wrap(waitErr, "Can't allocate IDs")
	}

	for i := range links {
		links[i].FromNodeID = nodes[links[i].FromIdx].ID
		links[i].ToNodeID = nodes[links[i].ToIdx].ID
	}
	return nil
}
