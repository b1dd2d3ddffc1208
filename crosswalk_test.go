package ranch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCrosswalkCSV(t *testing.T) {
	data := `highway,roadway,comment
Motorway, motorway, fast
residential,residential
 ,ignored
residential,residential
`
	cw, err := ReadCrosswalkCSV(strings.NewReader(data), "roadway", "unclassified")
	require.NoError(t, err)
	assert.Equal(t, 2, cw.Len())
	assert.Equal(t, "roadway", cw.Name())
	assert.Equal(t, "unclassified", cw.Default())

	label, ok := cw.Lookup("  MOTORWAY ")
	assert.True(t, ok)
	assert.Equal(t, "motorway", label)

	label, ok = cw.Lookup("hovercraft")
	assert.False(t, ok)
	assert.Equal(t, "unclassified", label)
}

func TestReadCrosswalkCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"single column", "highway\nmotorway\n"},
		{"empty", "highway,roadway\n"},
		{"conflict", "highway,roadway\nprimary,major\nPrimary,minor\n"},
		{"short row", "highway,roadway\nprimary\n"},
		{"empty label", "highway,roadway\nresidential,\nprimary,primary\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCrosswalkCSV(strings.NewReader(tt.data), tt.name, "x")
			assert.Error(t, err)
		})
	}
}

func TestCrosswalkValidate(t *testing.T) {
	assert.NoError(t, DefaultRoadwayCrosswalk(DEFAULT_ROADWAY_TYPE).Validate())
	assert.Error(t, NewCrosswalk("no default", map[string]string{"primary": "primary"}, "").Validate())
	assert.Error(t, NewCrosswalk("empty label", map[string]string{"residential": " "}, "unclassified").Validate())
	var cw *Crosswalk
	assert.Error(t, cw.Validate())
}

func TestCrosswalkWriteCSVRoundTrip(t *testing.T) {
	cw := DefaultRoadwayCrosswalk(DEFAULT_ROADWAY_TYPE)
	var buf bytes.Buffer
	require.NoError(t, cw.WriteCSV(&buf, "highway", "roadway"))
	assert.True(t, strings.HasPrefix(buf.String(), "highway,roadway\n"))

	read, err := ReadCrosswalkCSV(&buf, "copy", DEFAULT_ROADWAY_TYPE)
	require.NoError(t, err)
	assert.Equal(t, cw.Len(), read.Len())
	for _, highway := range []string{"motorway", "trunk_link", "residential", "footway"} {
		expected, _ := cw.Lookup(highway)
		actual, ok := read.Lookup(highway)
		assert.True(t, ok, highway)
		assert.Equal(t, expected, actual, highway)
	}
}

func TestDefaultNetworkTypeCrosswalk(t *testing.T) {
	cw := DefaultNetworkTypeCrosswalk(DEFAULT_NETWORK_TYPE)
	tests := map[string]string{
		"motorway":    "auto",
		"footway":     "walk",
		"residential": "auto+bike+walk",
		"cycleway":    "bike",
	}
	for highway, expected := range tests {
		actual, ok := cw.Lookup(highway)
		assert.True(t, ok, highway)
		assert.Equal(t, expected, actual, highway)
	}
}
