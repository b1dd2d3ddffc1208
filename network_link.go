package ranch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

/* Links stuff */

// LinkID is an assigned link identifier. Zero means "not assigned yet".
type LinkID int64

// Link is a single network link
type Link struct {
	Tags Tags
	// Canonical reference identifier (SharedStreets segment). Empty when absent.
	SHSTLinkID           string
	RoadwayType          string
	NetworkTypeIndicator string
	County               string
	Geom                 orb.LineString
	LengthMeters         float64
	ID                   LinkID
	// Source open map identifier (way). Zero when absent.
	OSMLinkID osm.WayID
	// Positions of source and target nodes in the node table the link belongs to
	FromIdx int
	ToIdx   int
	// Assigned identifiers of source and target nodes. Filled when IDs are allocated
	FromNodeID NodeID
	ToNodeID   NodeID
	Provenance Provenance
}

// HasOSM checks if link carries open map identifier
func (link *Link) HasOSM() bool {
	return link.OSMLinkID != 0
}

// HasSHST checks if link carries reference identifier
func (link *Link) HasSHST() bool {
	return link.SHSTLinkID != ""
}

// LinkTable is an ordered set of links
type LinkTable []Link

// Clone returns deep copy of the table
func (links LinkTable) Clone() LinkTable {
	result := make(LinkTable, len(links))
	for i := range links {
		result[i] = links[i]
		result[i].Tags = links[i].Tags.Clone()
		result[i].Geom = links[i].Geom.Clone()
	}
	return result
}

// endpointPair is an undirected pair of node positions
type endpointPair struct {
	a int
	b int
}

func newEndpointPair(from, to int) endpointPair {
	if from > to {
		from, to = to, from
	}
	return endpointPair{a: from, b: to}
}

// name returns street name from open map tags or reference tags
func (link *Link) name() string {
	if name := link.Tags.Get(SOURCE_OSM, "name"); name != "" {
		return name
	}
	return link.Tags.Get(SOURCE_SHST, "name")
}
