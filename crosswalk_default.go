package ranch

import (
	"strings"
)

type HighwayType uint16

const (
	HIGHWAY_MOTORWAY = HighwayType(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_RESIDENTIAL_LINK
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_SERVICES
	HIGHWAY_CYCLEWAY
	HIGHWAY_FOOTWAY
	HIGHWAY_PEDESTRIAN
	HIGHWAY_STEPS
	HIGHWAY_TRACK
	HIGHWAY_UNCLASSIFIED
)

func (iotaIdx HighwayType) String() string {
	names := [...]string{"motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "residential_link", "living_street", "service", "services", "cycleway", "footway", "pedestrian", "steps", "track", "unclassified"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

type RoadwayType uint16

const (
	ROADWAY_MOTORWAY = RoadwayType(iota + 1)
	ROADWAY_TRUNK
	ROADWAY_PRIMARY
	ROADWAY_SECONDARY
	ROADWAY_TERTIARY
	ROADWAY_RESIDENTIAL
	ROADWAY_LIVING_STREET
	ROADWAY_SERVICE
	ROADWAY_CYCLEWAY
	ROADWAY_FOOTWAY
	ROADWAY_TRACK
	ROADWAY_UNCLASSIFIED
)

func (iotaIdx RoadwayType) String() string {
	names := [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "living_street", "service", "cycleway", "footway", "track", "unclassified"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

type AgentType uint16

const (
	AGENT_AUTO = AgentType(iota + 1)
	AGENT_BIKE
	AGENT_WALK
)

func (iotaIdx AgentType) String() string {
	names := [...]string{"auto", "bike", "walk"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

const (
	// DEFAULT_ROADWAY_TYPE is a label for links whose tag is not in the roadway crosswalk
	DEFAULT_ROADWAY_TYPE = "unclassified"
	// DEFAULT_NETWORK_TYPE is a label for links whose tag is not in the network type crosswalk
	DEFAULT_NETWORK_TYPE = "unclassified"
)

var (
	roadwayByHighway = map[HighwayType]RoadwayType{
		HIGHWAY_MOTORWAY:         ROADWAY_MOTORWAY,
		HIGHWAY_MOTORWAY_LINK:    ROADWAY_MOTORWAY,
		HIGHWAY_TRUNK:            ROADWAY_TRUNK,
		HIGHWAY_TRUNK_LINK:       ROADWAY_TRUNK,
		HIGHWAY_PRIMARY:          ROADWAY_PRIMARY,
		HIGHWAY_PRIMARY_LINK:     ROADWAY_PRIMARY,
		HIGHWAY_SECONDARY:        ROADWAY_SECONDARY,
		HIGHWAY_SECONDARY_LINK:   ROADWAY_SECONDARY,
		HIGHWAY_TERTIARY:         ROADWAY_TERTIARY,
		HIGHWAY_TERTIARY_LINK:    ROADWAY_TERTIARY,
		HIGHWAY_RESIDENTIAL:      ROADWAY_RESIDENTIAL,
		HIGHWAY_RESIDENTIAL_LINK: ROADWAY_RESIDENTIAL,
		HIGHWAY_LIVING_STREET:    ROADWAY_LIVING_STREET,
		HIGHWAY_SERVICE:          ROADWAY_SERVICE,
		HIGHWAY_SERVICES:         ROADWAY_SERVICE,
		HIGHWAY_CYCLEWAY:         ROADWAY_CYCLEWAY,
		HIGHWAY_FOOTWAY:          ROADWAY_FOOTWAY,
		HIGHWAY_PEDESTRIAN:       ROADWAY_FOOTWAY,
		HIGHWAY_STEPS:            ROADWAY_FOOTWAY,
		HIGHWAY_TRACK:            ROADWAY_TRACK,
		HIGHWAY_UNCLASSIFIED:     ROADWAY_UNCLASSIFIED,
	}

	// Highway values each agent can not travel on
	agentExcludedHighways = map[AgentType]map[HighwayType]struct{}{
		AGENT_AUTO: {
			HIGHWAY_CYCLEWAY:      {},
			HIGHWAY_FOOTWAY:       {},
			HIGHWAY_PEDESTRIAN:    {},
			HIGHWAY_STEPS:         {},
			HIGHWAY_TRACK:         {},
			HIGHWAY_SERVICE:       {},
			HIGHWAY_SERVICES:      {},
			HIGHWAY_LIVING_STREET: {},
		},
		AGENT_BIKE: {
			HIGHWAY_FOOTWAY:       {},
			HIGHWAY_STEPS:         {},
			HIGHWAY_MOTORWAY:      {},
			HIGHWAY_MOTORWAY_LINK: {},
		},
		AGENT_WALK: {
			HIGHWAY_CYCLEWAY:      {},
			HIGHWAY_MOTORWAY:      {},
			HIGHWAY_MOTORWAY_LINK: {},
		},
	}

	agentTypesOrdered = []AgentType{AGENT_AUTO, AGENT_BIKE, AGENT_WALK}
)

// DefaultRoadwayCrosswalk returns built-in mapping from `highway` values to roadway types
func DefaultRoadwayCrosswalk(defaultValue string) *Crosswalk {
	values := make(map[string]string, len(roadwayByHighway))
	for highway, roadway := range roadwayByHighway {
		values[highway.String()] = roadway.String()
	}
	return NewCrosswalk("default_highway_to_roadway", values, defaultValue)
}

// DefaultNetworkTypeCrosswalk returns built-in mapping from `highway` values to the agents allowed on them,
// e.g. "auto+bike+walk" for residential streets and "walk" for footways
func DefaultNetworkTypeCrosswalk(defaultValue string) *Crosswalk {
	values := make(map[string]string, len(roadwayByHighway))
	for highway := range roadwayByHighway {
		agents := make([]string, 0, len(agentTypesOrdered))
		for _, agent := range agentTypesOrdered {
			if _, excluded := agentExcludedHighways[agent][highway]; excluded {
				continue
			}
			agents = append(agents, agent.String())
		}
		values[highway.String()] = strings.Join(agents, "+")
	}
	return NewCrosswalk("default_network_type_indicator", values, defaultValue)
}
