package ranch

// SourceKind marks which extract a record has been read from
type SourceKind uint16

const (
	// Canonical reference extract (SharedStreets)
	SOURCE_SHST = SourceKind(iota + 1)
	// Open map extract (OpenStreetMap)
	SOURCE_OSM
)

func (iotaIdx SourceKind) String() string {
	names := [...]string{"shst", "osm"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

// Provenance is the set of sources which contributed to a record
type Provenance uint8

const (
	PROVENANCE_SHST = Provenance(1 << iota)
	PROVENANCE_OSM
	PROVENANCE_BOTH = PROVENANCE_SHST | PROVENANCE_OSM
)

func (p Provenance) String() string {
	switch p {
	case PROVENANCE_SHST:
		return "shst"
	case PROVENANCE_OSM:
		return "osm"
	case PROVENANCE_BOTH:
		return "shst+osm"
	default:
		return "none"
	}
}

func provenanceOf(source SourceKind) Provenance {
	switch source {
	case SOURCE_SHST:
		return PROVENANCE_SHST
	case SOURCE_OSM:
		return PROVENANCE_OSM
	default:
		return 0
	}
}

var (
	sourceKinds = map[string]SourceKind{
		"shst": SOURCE_SHST,
		"osm":  SOURCE_OSM,
	}
)

func getSourceKind(str string) (SourceKind, bool) {
	found, ok := sourceKinds[str]
	return found, ok
}
