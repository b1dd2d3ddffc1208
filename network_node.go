package ranch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

/* Nodes stuff */

// NodeID is an assigned node identifier. Zero means "not assigned yet".
type NodeID int64

// Node is a single network node
type Node struct {
	Tags Tags
	// Canonical reference identifier (SharedStreets intersection). Empty when absent.
	SHSTNodeID string
	County     string
	Geom       orb.Point
	ID         NodeID
	// Source open map identifier. Zero when absent.
	OSMNodeID  osm.NodeID
	Provenance Provenance
}

// HasOSM checks if node carries open map identifier
func (node *Node) HasOSM() bool {
	return node.OSMNodeID != 0
}

// HasSHST checks if node carries reference identifier
func (node *Node) HasSHST() bool {
	return node.SHSTNodeID != ""
}

// ExternalID returns identifier of the node in its source: reference one when present, open map one otherwise
func (node *Node) ExternalID() string {
	if node.HasSHST() {
		return node.SHSTNodeID
	}
	return node.OSMNodeID.FeatureID().String()
}

// Point implements orb.Pointer so nodes can be put into spatial index
func (node *Node) Point() orb.Point {
	return node.Geom
}

// NodeTable is an ordered set of nodes. Links refer nodes by position in the table.
type NodeTable []Node

// Clone returns deep copy of the table
func (nodes NodeTable) Clone() NodeTable {
	result := make(NodeTable, len(nodes))
	for i := range nodes {
		result[i] = nodes[i]
		result[i].Tags = nodes[i].Tags.Clone()
	}
	return result
}
