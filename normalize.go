package ranch

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// NormalizedSource is a pair of node/link tables built from a single extract.
// IDs are not assigned yet, county is not resolved yet.
type NormalizedSource struct {
	Nodes  NodeTable
	Links  LinkTable
	Source SourceKind
}

// NormalizeStats is a summary of normalization of a single extract
type NormalizeStats struct {
	Source SourceKind `json:"source"`
	// Number of distinct input nodes referenced by kept features
	InputNodes int `json:"input_nodes"`
	// Number of input features (ways or reference segments)
	InputFeatures int `json:"input_features"`
	// Features skipped as not being a roadway (e.g. `highway=path` or areas)
	SkippedFeatures int `json:"skipped_features"`
	Nodes           int `json:"nodes"`
	Links           int `json:"links"`
	// Nodes collapsed into an earlier node with exactly the same geometry
	DuplicateNodes int `json:"duplicate_nodes"`
	// Features with an external identifier which has been seen already
	DuplicateFeatures int `json:"duplicate_features"`
	MalformedNodes    int `json:"malformed_nodes"`
	MalformedFeatures int `json:"malformed_features"`
	MalformedLinks    int `json:"malformed_links"`
}

// Malformed returns total number of records dropped because of bad geometry
func (stats NormalizeStats) Malformed() int {
	return stats.MalformedNodes + stats.MalformedFeatures + stats.MalformedLinks
}

func (iotaIdx SourceKind) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// Normalize converts raw extract into node/link tables of the common shape
func Normalize(extract Extract) (*NormalizedSource, NormalizeStats, error) {
	switch ext := extract.(type) {
	case *OSMExtract:
		src, stats := normalizeOSM(ext)
		return src, stats, nil
	case *SHSTExtract:
		src, stats := normalizeSHST(ext)
		return src, stats, nil
	default:
		return nil, NormalizeStats{}, errors.Errorf("Extract of type %T is not handled", extract)
	}
}

// nodeCollector builds node table and collapses nodes with exactly the same geometry
type nodeCollector struct {
	nodes      NodeTable
	byGeometry map[orb.Point]int
	duplicates int
}

func newNodeCollector(capacity int) *nodeCollector {
	return &nodeCollector{
		nodes:      make(NodeTable, 0, capacity),
		byGeometry: make(map[orb.Point]int, capacity),
	}
}

// add returns position of the node in table. If node with the same geometry exists already, its position is returned
// and the given node is dropped (first seen wins)
func (collector *nodeCollector) add(node Node) int {
	if idx, ok := collector.byGeometry[node.Geom]; ok {
		collector.duplicates++
		return idx
	}
	collector.nodes = append(collector.nodes, node)
	idx := len(collector.nodes) - 1
	collector.byGeometry[node.Geom] = idx
	return idx
}
