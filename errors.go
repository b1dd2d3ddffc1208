package ranch

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfig is returned when crosswalk files, county boundaries or range tables are missing or invalid
	ErrConfig = errors.New("configuration error")
	// ErrUnknownCounty is returned by the allocator for a county which has no configured range
	ErrUnknownCounty = errors.New("unknown county")
	// ErrUnresolvedCounty marks geometry outside of every configured county polygon
	ErrUnresolvedCounty = errors.New("unresolved county")
	// ErrRangeExhausted is returned when a county's ID range has no IDs left
	ErrRangeExhausted = errors.New("id range exhausted")
	// ErrAmbiguousMatch marks a record with more than one match candidate
	ErrAmbiguousMatch = errors.New("ambiguous match")
	// ErrMalformedGeometry marks a record with missing or invalid geometry
	ErrMalformedGeometry = errors.New("malformed geometry")
	// ErrNoSurvivingRecords is returned when nothing is left to build a network from
	ErrNoSurvivingRecords = errors.New("no surviving records")
)

// RangeExhaustedError carries the partition which ran out of IDs
type RangeExhaustedError struct {
	County string
	Kind   IDKind
	Range  CountyRange
	Issued int
}

func (e *RangeExhaustedError) Error() string {
	return fmt.Sprintf("%s range for county '%s' [%d, %d) exhausted at %d records", e.Kind, e.County, e.Range.Start, e.Range.End, e.Issued)
}

// Is makes errors.Is(err, ErrRangeExhausted) work for typed errors
func (e *RangeExhaustedError) Is(target error) bool {
	return target == ErrRangeExhausted
}

// BuildError is a fatal build failure. It names the stage the build was in.
type BuildError struct {
	Stage BuildStage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("stage '%s': %s", e.Stage, e.Err.Error())
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func fatal(stage BuildStage, err error) *BuildError {
	return &BuildError{Stage: stage, Err: err}
}

// ConfigError is invalid or missing configuration. Both ErrConfig and the cause are in its chain.
type ConfigError struct {
	Context string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", ErrConfig, e.Context)
	case e.Context == "":
		return fmt.Sprintf("%s: %s", ErrConfig, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Context, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConfig) work for typed errors
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func configError(format string, args ...interface{}) error {
	return &ConfigError{Context: fmt.Sprintf(format, args...)}
}

// wrapConfig marks err as configuration error keeping it as a cause
func wrapConfig(err error, context string) error {
	return &ConfigError{Context: context, Err: err}
}
