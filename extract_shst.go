package ranch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const (
	shstPropertyID               = "id"
	shstPropertyFromIntersection = "fromIntersectionId"
	shstPropertyToIntersection   = "toIntersectionId"
)

// SHSTSegment is a single reference segment (SharedStreets geometry) of the reference-match extract
type SHSTSegment struct {
	ID                 string
	FromIntersectionID string
	ToIntersectionID   string
	Geom               orb.LineString
	// Rest of feature properties (roadClass, forwardReferenceId, ...) as strings
	Properties map[string]string
}

// SHSTExtract is the reference-match extract
type SHSTExtract struct {
	Segments []SHSTSegment
}

// Source implements Extract
func (extract *SHSTExtract) Source() SourceKind {
	return SOURCE_SHST
}

// ReadSHSTExtractFile reads reference extract from GeoJSON file
func ReadSHSTExtractFile(filename string) (*SHSTExtract, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open SharedStreets file")
	}
	defer file.Close()
	return ReadSHSTExtract(file)
}

// ReadSHSTExtract reads reference extract from GeoJSON FeatureCollection.
// Features of non-LineString geometry are kept with empty geometry: normalization counts and drops them.
func ReadSHSTExtract(r io.Reader) (*SHSTExtract, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read GeoJSON")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse GeoJSON")
	}
	extract := &SHSTExtract{
		Segments: make([]SHSTSegment, 0, len(fc.Features)),
	}
	for _, feature := range fc.Features {
		segment := SHSTSegment{
			Properties: make(map[string]string, len(feature.Properties)),
		}
		for key, value := range feature.Properties {
			str, err := propertyToString(value)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't convert property '%s'", key)
			}
			switch key {
			case shstPropertyID:
				segment.ID = str
			case shstPropertyFromIntersection:
				segment.FromIntersectionID = str
			case shstPropertyToIntersection:
				segment.ToIntersectionID = str
			default:
				segment.Properties[key] = str
			}
		}
		if segment.ID == "" && feature.ID != nil {
			segment.ID = fmt.Sprintf("%v", feature.ID)
		}
		if feature.Geometry != nil && feature.Geometry.IsLineString() {
			segment.Geom = make(orb.LineString, 0, len(feature.Geometry.LineString))
			for _, coords := range feature.Geometry.LineString {
				if len(coords) < 2 {
					segment.Geom = nil
					break
				}
				segment.Geom = append(segment.Geom, orb.Point{coords[0], coords[1]})
			}
		}
		extract.Segments = append(extract.Segments, segment)
	}
	return extract, nil
}

func propertyToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		// Nested objects (e.g. metadata) are kept as JSON; encoding/json sorts map keys
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
