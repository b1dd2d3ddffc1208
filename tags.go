package ranch

import (
	"sort"
	"strings"

	"github.com/paulmach/osm"
)

// Tags is a set of source tags. Keys are qualified by provenance: "osm:highway", "shst:roadClass".
type Tags map[string]string

// QualifiedKey returns tag key prefixed with source name
func QualifiedKey(source SourceKind, key string) string {
	return source.String() + ":" + key
}

// Get returns value of unqualified key for given source
func (tags Tags) Get(source SourceKind, key string) string {
	return tags[QualifiedKey(source, key)]
}

// Keys returns sorted keys
func (tags Tags) Keys() []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Union returns new set which contains tags of both sets. Values of the receiver win on conflict.
func (tags Tags) Union(other Tags) Tags {
	result := make(Tags, len(tags)+len(other))
	for k, v := range other {
		result[k] = v
	}
	for k, v := range tags {
		result[k] = v
	}
	return result
}

// Clone returns copy of tags
func (tags Tags) Clone() Tags {
	result := make(Tags, len(tags))
	for k, v := range tags {
		result[k] = v
	}
	return result
}

// String returns tags as "k=v|k=v" in key order
func (tags Tags) String() string {
	keys := tags.Keys()
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + tags[k]
	}
	return strings.Join(pairs, "|")
}

func tagsFromOSM(source SourceKind, osmTags osm.Tags) Tags {
	result := make(Tags, len(osmTags))
	for _, tag := range osmTags {
		result[QualifiedKey(source, tag.Key)] = tag.Value
	}
	return result
}

var (
	poiHighwayTags = map[string]struct{}{
		"bus_stop": {},
		"platform": {},
	}

	negligibleHighwayTags = map[string]struct{}{
		"path":         {},
		"construction": {},
		"proposed":     {},
		"raceway":      {},
		"bridleway":    {},
		"rest_area":    {},
		"su":           {},
		"road":         {},
		"abandoned":    {},
		"planned":      {},
		"trailhead":    {},
		"stairs":       {},
		"dismantled":   {},
		"disused":      {},
		"razed":        {},
		"access":       {},
		"corridor":     {},
		"stop":         {},
	}
)

func isHighwayPOI(highway string) bool {
	_, ok := poiHighwayTags[highway]
	return ok
}

func isHighwayNegligible(highway string) bool {
	_, ok := negligibleHighwayTags[highway]
	return ok
}
