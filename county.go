package ranch

import (
	"io"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// DEFAULT_COUNTY_NAME_PROPERTY is the feature property holding county name in boundary files
const DEFAULT_COUNTY_NAME_PROPERTY = "NAME"

// County is a named boundary
type County struct {
	Name  string
	Geom  orb.MultiPolygon
	bound orb.Bound
}

// Counties resolves geometry to county name. Nil value resolves nothing.
type Counties struct {
	items []County
}

// NewCounties returns county lookup. Counties are checked in name order, so the first (by name) county
// containing a point wins when boundaries overlap.
func NewCounties(counties ...County) *Counties {
	items := make([]County, 0, len(counties))
	for _, county := range counties {
		county.bound = county.Geom.Bound()
		items = append(items, county)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return &Counties{items: items}
}

// LoadCountiesGeoJSON reads county boundaries from GeoJSON file
func LoadCountiesGeoJSON(fname string, nameProperty string) (*Counties, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open county boundaries file")
	}
	defer file.Close()
	return ReadCountiesGeoJSON(file, nameProperty)
}

// ReadCountiesGeoJSON reads FeatureCollection of Polygon/MultiPolygon features.
// Name of county is taken from the given property.
func ReadCountiesGeoJSON(r io.Reader, nameProperty string) (*Counties, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read county boundaries")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse county boundaries")
	}
	if nameProperty == "" {
		nameProperty = DEFAULT_COUNTY_NAME_PROPERTY
	}
	counties := make([]County, 0, len(fc.Features))
	for i, feature := range fc.Features {
		name := feature.Properties.MustString(nameProperty, "")
		if name == "" {
			return nil, errors.Errorf("County feature #%d has no '%s' property", i, nameProperty)
		}
		var geom orb.MultiPolygon
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			geom = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			geom = g
		default:
			return nil, errors.Errorf("County '%s' has geometry of type %T, expected Polygon or MultiPolygon", name, feature.Geometry)
		}
		counties = append(counties, County{Name: name, Geom: geom})
	}
	return NewCounties(counties...), nil
}

// Resolve returns name of the county which contains given point
func (counties *Counties) Resolve(pt orb.Point) (string, bool) {
	if counties == nil {
		return "", false
	}
	for i := range counties.items {
		county := &counties.items[i]
		if !county.bound.Contains(pt) {
			continue
		}
		if planar.MultiPolygonContains(county.Geom, pt) {
			return county.Name, true
		}
	}
	return "", false
}

// ResolveLine returns name of the county which contains middle point of the line
func (counties *Counties) ResolveLine(line orb.LineString) (string, bool) {
	if len(line) == 0 {
		return "", false
	}
	_, middle := lineMiddlePoint(line)
	return counties.Resolve(middle)
}

// Names returns sorted county names
func (counties *Counties) Names() []string {
	if counties == nil {
		return nil
	}
	names := make([]string, len(counties.items))
	for i := range counties.items {
		names[i] = counties.items[i].Name
	}
	return names
}

// Len returns number of counties
func (counties *Counties) Len() int {
	if counties == nil {
		return 0
	}
	return len(counties.items)
}
