package ranch

import (
	"io"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// ExportToGeoJSON writes nodes and links into two FeatureCollection files.
// If file name is 'bay.geojson' then 'bay_nodes.geojson' and 'bay_links.geojson' are produced.
func (network *RoadwayNetwork) ExportToGeoJSON(fname string) error {
	fnameParts := strings.Split(fname, ".geojson")
	err := writeFile(fnameParts[0]+"_nodes.geojson", func(w io.Writer) error {
		return ExportNodesGeoJSON(w, network.Nodes)
	})
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}
	err = writeFile(fnameParts[0]+"_links.geojson", func(w io.Writer) error {
		return ExportLinksGeoJSON(w, network.Links)
	})
	if err != nil {
		return errors.Wrap(err, "Can't export links")
	}
	return nil
}

// ExportNodesGeoJSON writes nodes as FeatureCollection of Points. Source tags become properties.
func ExportNodesGeoJSON(w io.Writer, nodes NodeTable) error {
	fc := geojson.NewFeatureCollection()
	for i := range nodes {
		node := &nodes[i]
		feature := geojson.NewPointFeature([]float64{node.Geom.Lon(), node.Geom.Lat()})
		feature.ID = int64(node.ID)
		setTagProperties(feature, node.Tags)
		feature.SetProperty("id", int64(node.ID))
		if node.HasOSM() {
			feature.SetProperty("osm_node_id", int64(node.OSMNodeID))
		}
		if node.HasSHST() {
			feature.SetProperty("shst_node_id", node.SHSTNodeID)
		}
		feature.SetProperty("county", node.County)
		feature.SetProperty("provenance", node.Provenance.String())
		fc.AddFeature(feature)
	}
	return writeFeatureCollection(w, fc)
}

// ExportLinksGeoJSON writes links as FeatureCollection of LineStrings. Source tags become properties.
func ExportLinksGeoJSON(w io.Writer, links LinkTable) error {
	fc := geojson.NewFeatureCollection()
	for i := range links {
		link := &links[i]
		coordinates := make([][]float64, len(link.Geom))
		for j, pt := range link.Geom {
			coordinates[j] = []float64{pt.Lon(), pt.Lat()}
		}
		feature := geojson.NewLineStringFeature(coordinates)
		feature.ID = int64(link.ID)
		setTagProperties(feature, link.Tags)
		feature.SetProperty("id", int64(link.ID))
		feature.SetProperty("from_node_id", int64(link.FromNodeID))
		feature.SetProperty("to_node_id", int64(link.ToNodeID))
		if link.HasOSM() {
			feature.SetProperty("osm_way_id", int64(link.OSMLinkID))
		}
		if link.HasSHST() {
			feature.SetProperty("shst_link_id", link.SHSTLinkID)
		}
		feature.SetProperty("county", link.County)
		feature.SetProperty("roadway", link.RoadwayType)
		feature.SetProperty("network_type", link.NetworkTypeIndicator)
		feature.SetProperty("provenance", link.Provenance.String())
		feature.SetProperty("length_meters", link.LengthMeters)
		fc.AddFeature(feature)
	}
	return writeFeatureCollection(w, fc)
}

func setTagProperties(feature *geojson.Feature, tags Tags) {
	for _, key := range tags.Keys() {
		feature.SetProperty(key, tags[key])
	}
}

func writeFeatureCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal features")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "Can't write features")
}
