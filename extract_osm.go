package ranch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// Extract is a raw source extract in its native shape
type Extract interface {
	Source() SourceKind
}

// OSMExtract is an open map street-graph extract: ways and the nodes they reference
type OSMExtract struct {
	Nodes osm.Nodes
	Ways  osm.Ways
}

// NewOSMExtract wraps already loaded OSM objects
func NewOSMExtract(nodes osm.Nodes, ways osm.Ways) *OSMExtract {
	return &OSMExtract{
		Nodes: nodes,
		Ways:  ways,
	}
}

// Source implements Extract
func (extract *OSMExtract) Source() SourceKind {
	return SOURCE_OSM
}

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

func newOSMScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	// Guess file extension and prepare correct scanner
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf":
		return osmpbf.New(ctx, file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// ReadOSMExtract reads ways having `highway` tag and nodes referenced by them from *.osm / *.osm.pbf file
func ReadOSMExtract(ctx context.Context, filename string, logger *log.Logger) (*OSMExtract, error) {
	if logger == nil {
		logger = log.Default()
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open OSM file")
	}
	defer file.Close()

	extract := &OSMExtract{}
	nodesSeen := make(map[osm.NodeID]struct{})

	/* Process ways */
	{
		scannerWays, err := newOSMScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			way, ok := scannerWays.Object().(*osm.Way)
			if !ok {
				continue
			}
			if way.Tags.Find("highway") == "" {
				continue
			}
			for _, node := range way.Nodes {
				nodesSeen[node.ID] = struct{}{}
			}
			extract.Ways = append(extract.Ways, way)
		}
		if err := scannerWays.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}

	// Seek file to start
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	{
		scannerNodes, err := newOSMScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			node, ok := scannerNodes.Object().(*osm.Node)
			if !ok {
				continue
			}
			if _, ok := nodesSeen[node.ID]; !ok {
				continue
			}
			delete(nodesSeen, node.ID)
			extract.Nodes = append(extract.Nodes, node)
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	logger.Info("read OSM extract", "file", filename, "ways", len(extract.Ways), "nodes", len(extract.Nodes), "missing_nodes", len(nodesSeen))
	return extract, nil
}
