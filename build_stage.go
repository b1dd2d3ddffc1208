package ranch

// BuildStage is a state of the roadway build state machine
type BuildStage uint16

const (
	STAGE_INIT = BuildStage(iota + 1)
	STAGE_NORMALIZING
	STAGE_CONFLATING
	STAGE_CLASSIFYING
	STAGE_ALLOCATING_IDS
	STAGE_FINALIZED
)

func (iotaIdx BuildStage) String() string {
	names := [...]string{"init", "normalizing", "conflating", "classifying", "allocating_ids", "finalized"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

// BuildStatus is a terminal state of the build
type BuildStatus uint16

const (
	STATUS_SUCCESS = BuildStatus(iota + 1)
	STATUS_PARTIAL_FAILURE
	STATUS_FATAL
)

func (iotaIdx BuildStatus) String() string {
	names := [...]string{"success", "partial_failure", "fatal"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

// MarshalText implements encoding.TextMarshaler so reports carry readable statuses
func (iotaIdx BuildStatus) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// MatchKind tells whether a match decision has been made for nodes or links
type MatchKind uint16

const (
	MATCH_NODE = MatchKind(iota + 1)
	MATCH_LINK
)

func (iotaIdx MatchKind) String() string {
	names := [...]string{"node", "link"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

func (iotaIdx MatchKind) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

func (iotaIdx BuildStage) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}
