package ranch

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// fingerprintNamespace is the namespace of name-based build fingerprints
var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/LdDl/ranch/build"))

// CountyStats are counters of county resolution
type CountyStats struct {
	// Resolved county names without configured range
	Unknown []string `json:"unknown,omitempty"`
	// Records outside of every county boundary
	UnresolvedNodes int `json:"unresolved_nodes"`
	UnresolvedLinks int `json:"unresolved_links"`
	// Records inside a county which has no configured range
	UnknownNodes int `json:"unknown_nodes"`
	UnknownLinks int `json:"unknown_links"`
}

// BuildReport is a structured summary of a build
type BuildReport struct {
	Fingerprint string           `json:"fingerprint,omitempty"`
	Normalize   []NormalizeStats `json:"normalize"`
	Ambiguities []AmbiguousMatch `json:"ambiguities,omitempty"`
	HighWater   []AllocationMark `json:"high_water"`
	Classify    ClassifyStats    `json:"classify"`
	Counties    CountyStats      `json:"counties"`
	Conflation  ConflationStats  `json:"conflation"`
	Nodes       int              `json:"nodes"`
	Links       int              `json:"links"`
	Stage       BuildStage       `json:"stage"`
	Status      BuildStatus      `json:"status"`
}

// Malformed returns number of records dropped because of bad geometry
func (report *BuildReport) Malformed() int {
	total := 0
	for _, stats := range report.Normalize {
		total += stats.Malformed()
	}
	return total
}

// Anomalies returns per-record anomalies of the build as errors. None of them is fatal.
func (report *BuildReport) Anomalies() []error {
	anomalies := []error{}
	if n := report.Malformed(); n > 0 {
		anomalies = append(anomalies, errors.Wrapf(ErrMalformedGeometry, "%d records dropped", n))
	}
	if n := report.Conflation.Nodes.Ambiguous + report.Conflation.Links.Ambiguous; n > 0 {
		anomalies = append(anomalies, errors.Wrapf(ErrAmbiguousMatch, "%d nodes and %d links resolved by tie-break", report.Conflation.Nodes.Ambiguous, report.Conflation.Links.Ambiguous))
	}
	if n := report.Counties.UnresolvedNodes + report.Counties.UnresolvedLinks; n > 0 {
		anomalies = append(anomalies, errors.Wrapf(ErrUnresolvedCounty, "%d nodes and %d links routed to unassigned county", report.Counties.UnresolvedNodes, report.Counties.UnresolvedLinks))
	}
	if n := report.Counties.UnknownNodes + report.Counties.UnknownLinks; n > 0 {
		anomalies = append(anomalies, errors.Wrapf(ErrUnknownCounty, "%d nodes and %d links routed to unassigned county", report.Counties.UnknownNodes, report.Counties.UnknownLinks))
	}
	return anomalies
}

// WriteJSON writes indented JSON report
func (report *BuildReport) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return errors.Wrap(err, "Can't encode build report")
	}
	return nil
}

// tablesFingerprint returns name-based UUID of final tables. Identical tables give identical fingerprints.
func tablesFingerprint(nodes NodeTable, links LinkTable) string {
	var buf bytes.Buffer
	for i := range nodes {
		node := &nodes[i]
		buf.WriteString(strconv.FormatInt(int64(node.ID), 10))
		buf.WriteByte(';')
		buf.WriteString(node.ExternalID())
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatInt(int64(node.OSMNodeID), 10))
		buf.WriteByte(';')
		buf.WriteString(node.County)
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatFloat(node.Geom.Lon(), 'f', -1, 64))
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatFloat(node.Geom.Lat(), 'f', -1, 64))
		buf.WriteByte(';')
		buf.WriteString(node.Tags.String())
		buf.WriteByte('\n')
	}
	for i := range links {
		link := &links[i]
		buf.WriteString(strconv.FormatInt(int64(link.ID), 10))
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatInt(int64(link.FromNodeID), 10))
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatInt(int64(link.ToNodeID), 10))
		buf.WriteByte(';')
		buf.WriteString(link.SHSTLinkID)
		buf.WriteByte(';')
		buf.WriteString(strconv.FormatInt(int64(link.OSMLinkID), 10))
		buf.WriteByte(';')
		buf.WriteString(link.County)
		buf.WriteByte(';')
		buf.WriteString(link.RoadwayType)
		buf.WriteByte(';')
		buf.WriteString(link.NetworkTypeIndicator)
		buf.WriteByte(';')
		for _, pt := range link.Geom {
			buf.WriteString(strconv.FormatFloat(pt.Lon(), 'f', -1, 64))
			buf.WriteByte(' ')
			buf.WriteString(strconv.FormatFloat(pt.Lat(), 'f', -1, 64))
			buf.WriteByte(',')
		}
		buf.WriteByte(';')
		buf.WriteString(link.Tags.String())
		buf.WriteByte('\n')
	}
	return uuid.NewSHA1(fingerprintNamespace, buf.Bytes()).String()
}
