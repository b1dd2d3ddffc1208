package ranch

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Crosswalk maps raw tag value to a standardized label.
//
// Lookups are total: unmapped value resolves to the declared default.
// Crosswalk is read-only after construction and safe for concurrent use.
type Crosswalk struct {
	name         string
	values       map[string]string
	defaultValue string
}

// Crosswalks is the pair of lookup tables used by classification
type Crosswalks struct {
	Roadway     *Crosswalk
	NetworkType *Crosswalk
}

// NewCrosswalk creates crosswalk from given mapping. Keys are normalized (trimmed, lower-cased).
func NewCrosswalk(name string, values map[string]string, defaultValue string) *Crosswalk {
	cw := &Crosswalk{
		name:         name,
		values:       make(map[string]string, len(values)),
		defaultValue: defaultValue,
	}
	for k, v := range values {
		cw.values[normalizeTagValue(k)] = v
	}
	return cw
}

// Validate checks that every lookup resolves to a non-empty label
func (cw *Crosswalk) Validate() error {
	if cw == nil {
		return errors.New("Crosswalk is not provided")
	}
	if strings.TrimSpace(cw.defaultValue) == "" {
		return errors.Errorf("Crosswalk '%s' has empty default label", cw.name)
	}
	for k, v := range cw.values {
		if strings.TrimSpace(v) == "" {
			return errors.Errorf("Crosswalk '%s': key '%s' has empty label", cw.name, k)
		}
	}
	return nil
}

// Lookup returns label for raw value. Second value is false when the default has been used.
func (cw *Crosswalk) Lookup(raw string) (string, bool) {
	if v, ok := cw.values[normalizeTagValue(raw)]; ok {
		return v, true
	}
	return cw.defaultValue, false
}

// Name returns name of the crosswalk (usually the file it has been loaded from)
func (cw *Crosswalk) Name() string {
	return cw.name
}

// Default returns declared default label
func (cw *Crosswalk) Default() string {
	return cw.defaultValue
}

// Len returns number of mapped values
func (cw *Crosswalk) Len() int {
	return len(cw.values)
}

// LoadCrosswalkCSV reads crosswalk from CSV file
func LoadCrosswalkCSV(fname string, defaultValue string) (*Crosswalk, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open crosswalk file")
	}
	defer file.Close()
	return ReadCrosswalkCSV(file, fname, defaultValue)
}

// ReadCrosswalkCSV reads crosswalk from CSV data.
// First row is a header. First column is a raw tag value, second one is a label. Rest of columns are ignored.
func ReadCrosswalkCSV(r io.Reader, name string, defaultValue string) (*Crosswalk, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read header")
	}
	if len(header) < 2 {
		return nil, errors.Errorf("Crosswalk '%s' needs at least two columns, got %d", name, len(header))
	}

	values := make(map[string]string)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read line %d", line)
		}
		if len(record) < 2 {
			return nil, errors.Errorf("Crosswalk '%s' line %d: expected at least two columns, got %d", name, line, len(record))
		}
		key := normalizeTagValue(record[0])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(record[1])
		if value == "" {
			return nil, errors.Errorf("Crosswalk '%s' line %d: key '%s' has empty label", name, line, key)
		}
		if prev, ok := values[key]; ok && prev != value {
			return nil, errors.Errorf("Crosswalk '%s' line %d: key '%s' is mapped to both '%s' and '%s'", name, line, key, prev, value)
		}
		values[key] = value
	}
	if len(values) == 0 {
		return nil, errors.Errorf("Crosswalk '%s' is empty", name)
	}
	return NewCrosswalk(name, values, defaultValue), nil
}

// WriteCSV writes crosswalk as CSV with given header. Rows are sorted by raw value.
func (cw *Crosswalk) WriteCSV(w io.Writer, keyColumn, valueColumn string) error {
	writer := csv.NewWriter(w)
	err := writer.Write([]string{keyColumn, valueColumn})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	keys := make([]string, 0, len(cw.values))
	for k := range cw.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		err = writer.Write([]string{k, cw.values[k]})
		if err != nil {
			return errors.Wrap(err, "Can't write row")
		}
	}
	writer.Flush()
	return writer.Error()
}

func normalizeTagValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
