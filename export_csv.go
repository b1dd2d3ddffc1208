package ranch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// ExportToCSV writes nodes and links into two ';'-separated files.
// If file name is 'bay.csv' then 'bay_nodes.csv' and 'bay_links.csv' are produced.
func (network *RoadwayNetwork) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fnameParts[0] + "_nodes.csv"
	fnameLinks := fnameParts[0] + "_links.csv"

	err := writeFile(fnameNodes, func(w io.Writer) error {
		return ExportNodesCSV(w, network.Nodes)
	})
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}
	err = writeFile(fnameLinks, func(w io.Writer) error {
		return ExportLinksCSV(w, network.Links)
	})
	if err != nil {
		return errors.Wrap(err, "Can't export links")
	}
	return nil
}

func writeFile(fname string, fn func(w io.Writer) error) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	return fn(file)
}

// ExportNodesCSV writes nodes with WKT geometry
func ExportNodesCSV(w io.Writer, nodes NodeTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	err := writer.Write([]string{"id", "osm_node_id", "shst_node_id", "county", "provenance", "longitude", "latitude", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := range nodes {
		node := &nodes[i]
		osmNodeID := ""
		if node.HasOSM() {
			osmNodeID = fmt.Sprintf("%d", node.OSMNodeID)
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", node.ID),
			osmNodeID,
			node.SHSTNodeID,
			node.County,
			node.Provenance.String(),
			fmt.Sprintf("%f", node.Geom.Lon()),
			fmt.Sprintf("%f", node.Geom.Lat()),
			wkt.MarshalString(node.Geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush nodes")
}

// ExportLinksCSV writes links with WKT geometry
func ExportLinksCSV(w io.Writer, links LinkTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	err := writer.Write([]string{"id", "from_node_id", "to_node_id", "osm_way_id", "shst_link_id", "county", "roadway", "network_type", "provenance", "length_meters", "name", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := range links {
		link := &links[i]
		osmWayID := ""
		if link.HasOSM() {
			osmWayID = fmt.Sprintf("%d", link.OSMLinkID)
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", link.ID),
			fmt.Sprintf("%d", link.FromNodeID),
			fmt.Sprintf("%d", link.ToNodeID),
			osmWayID,
			link.SHSTLinkID,
			link.County,
			link.RoadwayType,
			link.NetworkTypeIndicator,
			link.Provenance.String(),
			fmt.Sprintf("%f", link.LengthMeters),
			link.name(),
			wkt.MarshalString(link.Geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write link")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush links")
}
