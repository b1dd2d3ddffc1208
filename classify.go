package ranch

import (
	"sort"
)

// ClassifyRules tells where dominant tag of a link is taken from
type ClassifyRules struct {
	// Key to read per source, e.g. "roadClass" for reference source and "highway" for open map source
	Keys map[SourceKind]string
	// Sources in order of precedence. First source with a value known to the roadway crosswalk wins.
	Precedence []SourceKind
}

// DefaultClassifyRules prefers reference `roadClass` over open map `highway`
func DefaultClassifyRules() ClassifyRules {
	return ClassifyRules{
		Keys: map[SourceKind]string{
			SOURCE_SHST: "roadClass",
			SOURCE_OSM:  "highway",
		},
		Precedence: []SourceKind{SOURCE_SHST, SOURCE_OSM},
	}
}

// UnmappedValue is a raw tag value which has not been found in some crosswalk
type UnmappedValue struct {
	Crosswalk string `json:"crosswalk"`
	Value     string `json:"value"`
	Count     int    `json:"count"`
}

// ClassifyStats are counters of classification
type ClassifyStats struct {
	Unmapped []UnmappedValue `json:"unmapped,omitempty"`
	// Links with at least one crosswalk miss (default label has been used)
	Unclassified int `json:"unclassified"`
	// Links without any dominant tag
	Untagged int `json:"untagged"`
}

// dominantTag returns classification tag value in order of precedence.
// First value known to the roadway crosswalk wins. When none is known, first non-empty value is returned.
func (rules ClassifyRules) dominantTag(tags Tags, roadway *Crosswalk) string {
	first := ""
	for _, source := range rules.Precedence {
		key, ok := rules.Keys[source]
		if !ok {
			continue
		}
		value := normalizeTagValue(tags.Get(source, key))
		if value == "" {
			continue
		}
		if _, known := roadway.Lookup(value); known {
			return value
		}
		if first == "" {
			first = value
		}
	}
	return first
}

// Classify returns copy of links with roadway type and network type indicator filled.
// Every link gets a label: crosswalk misses resolve to the declared defaults.
func Classify(links LinkTable, cw Crosswalks, rules ClassifyRules) (LinkTable, ClassifyStats) {
	stats := ClassifyStats{}
	unmapped := make(map[UnmappedValue]int)
	classified := links.Clone()
	for i := range classified {
		link := &classified[i]
		value := rules.dominantTag(link.Tags, cw.Roadway)
		if value == "" {
			stats.Untagged++
		}
		roadway, okRoadway := cw.Roadway.Lookup(value)
		networkType, okNetwork := cw.NetworkType.Lookup(value)
		link.RoadwayType = roadway
		link.NetworkTypeIndicator = networkType
		if okRoadway && okNetwork {
			continue
		}
		stats.Unclassified++
		if !okRoadway {
			unmapped[UnmappedValue{Crosswalk: cw.Roadway.Name(), Value: value}]++
		}
		if !okNetwork {
			unmapped[UnmappedValue{Crosswalk: cw.NetworkType.Name(), Value: value}]++
		}
	}
	stats.Unmapped = make([]UnmappedValue, 0, len(unmapped))
	for key, count := range unmapped {
		key.Count = count
		stats.Unmapped = append(stats.Unmapped, key)
	}
	sort.Slice(stats.Unmapped, func(i, j int) bool {
		if stats.Unmapped[i].Crosswalk != stats.Unmapped[j].Crosswalk {
			return stats.Unmapped[i].Crosswalk < stats.Unmapped[j].Crosswalk
		}
		return stats.Unmapped[i].Value < stats.Unmapped[j].Value
	})
	return classified, stats
}
